package config

const (
	defaultOutputDir        = "./output"
	defaultCacheDir         = "~/.cache/articast"
	defaultMaxSegmentLength = 200
	defaultDefaultVoice     = "main"
	defaultEngine           = "exec"
	defaultCommand          = "f5-tts_infer-cli"
	defaultModel            = "F5TTS_v1_Base"
	defaultNFEStep          = 32
	defaultCFGStrength      = 2.0
	defaultSpeed            = 1.0
	defaultTargetRMS        = 0.1
	defaultTimeoutSeconds   = 120
	defaultCrossfadeMillis  = 150
	defaultSampleRate       = 24000
	defaultChannels         = 1
	defaultWorkers          = 1
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir,
		},
		Split: Split{
			MaxSegmentLength: defaultMaxSegmentLength,
			DefaultVoice:     defaultDefaultVoice,
		},
		TTS: TTS{
			Engine:         defaultEngine,
			Command:        defaultCommand,
			Model:          defaultModel,
			NFEStep:        defaultNFEStep,
			CFGStrength:    defaultCFGStrength,
			Speed:          defaultSpeed,
			TargetRMS:      defaultTargetRMS,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Concat: Concat{
			CrossfadeMillis: defaultCrossfadeMillis,
			SampleRate:      defaultSampleRate,
			Channels:        defaultChannels,
		},
		Pipeline: Pipeline{
			Workers: defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Voices: map[string]Voice{},
	}
}
