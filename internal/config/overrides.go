package config

// Overrides carries command-line values that take precedence over
// file-sourced configuration. Nil fields leave the loaded value untouched.
// Apply runs after Load so the precedence chain is flags > file > defaults.
type Overrides struct {
	InputArticle     *string
	OutputDir        *string
	CacheDir         *string
	CacheEnabled     *bool
	MaxSegmentLength *int
	DefaultVoice     *string
	Engine           *string
	Speed            *float64
	TimeoutSeconds   *int
	CrossfadeMillis  *int
	Workers          *int
	LogLevel         *string
	LogFormat        *string
}

// Apply merges the overrides into cfg and re-runs normalization so path
// expansion covers flag-supplied values too.
func (o Overrides) Apply(cfg *Config) error {
	if o.InputArticle != nil {
		cfg.Paths.InputArticle = *o.InputArticle
	}
	if o.OutputDir != nil {
		cfg.Paths.OutputDir = *o.OutputDir
	}
	if o.CacheDir != nil {
		cfg.Cache.Dir = *o.CacheDir
	}
	if o.CacheEnabled != nil {
		cfg.Cache.Enabled = *o.CacheEnabled
	}
	if o.MaxSegmentLength != nil {
		cfg.Split.MaxSegmentLength = *o.MaxSegmentLength
	}
	if o.DefaultVoice != nil {
		cfg.Split.DefaultVoice = *o.DefaultVoice
	}
	if o.Engine != nil {
		cfg.TTS.Engine = *o.Engine
	}
	if o.Speed != nil {
		cfg.TTS.Speed = *o.Speed
	}
	if o.TimeoutSeconds != nil {
		cfg.TTS.TimeoutSeconds = *o.TimeoutSeconds
	}
	if o.CrossfadeMillis != nil {
		cfg.Concat.CrossfadeMillis = *o.CrossfadeMillis
	}
	if o.Workers != nil {
		cfg.Pipeline.Workers = *o.Workers
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		cfg.Logging.Format = *o.LogFormat
	}
	return cfg.normalize()
}
