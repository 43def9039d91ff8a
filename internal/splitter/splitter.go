package splitter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segment is one sentence-level unit of text assigned to a single voice.
type Segment struct {
	Index int
	Text  string
	Voice string
	// Speed overrides the voice profile speed when > 0. Set only by
	// structured markers.
	Speed float64
	// Seed for synthesis; -1 requests a random seed.
	Seed int64
}

// Splitter segments article text under a maximum segment length, measured
// in runes so CJK limits match character counts.
type Splitter struct {
	maxLength int
}

func New(maxLength int) *Splitter {
	if maxLength <= 0 {
		maxLength = 200
	}
	return &Splitter{maxLength: maxLength}
}

type voiceRun struct {
	directive Directive
	text      string
}

// Split returns ordered segments with contiguous indices starting at 0.
// Text before the first marker uses defaultVoice.
func (s *Splitter) Split(text, defaultVoice string) []Segment {
	segments := make([]Segment, 0, 16)
	for _, run := range voiceRuns(text, defaultVoice) {
		for _, chunk := range s.chunks(run.text) {
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			segments = append(segments, Segment{
				Index: len(segments),
				Text:  chunk,
				Voice: run.directive.Name,
				Speed: run.directive.Speed,
				Seed:  run.directive.Seed,
			})
		}
	}
	return segments
}

func voiceRuns(text, defaultVoice string) []voiceRun {
	spans := scanMarkers(text)
	runs := make([]voiceRun, 0, len(spans)+1)
	current := Directive{Kind: MarkerBracket, Name: defaultVoice, Seed: -1}
	pos := 0
	for _, span := range spans {
		if span.start > pos {
			runs = append(runs, voiceRun{directive: current, text: text[pos:span.start]})
		}
		current = span.directive
		pos = span.end
	}
	if pos < len(text) {
		runs = append(runs, voiceRun{directive: current, text: text[pos:]})
	}
	return runs
}

// chunks splits one voice run into sentences, then re-splits anything over
// the length limit.
func (s *Splitter) chunks(text string) []string {
	var out []string
	for _, sentence := range splitSentences(text) {
		if utf8.RuneCountInString(sentence) <= s.maxLength {
			out = append(out, sentence)
			continue
		}
		out = append(out, s.refine(sentence)...)
	}
	return out
}

// splitSentences cuts at primary sentence terminals, keeping the terminal
// (and any immediately following terminals and whitespace) with the
// preceding sentence so concatenation is lossless.
func splitSentences(text string) []string {
	var parts []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isPrimaryTerminal(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isPrimaryTerminal(runes[i+1]) {
			i++
		}
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
		parts = append(parts, string(runes[start:i+1]))
		start = i + 1
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}

// refine re-splits an oversized sentence at the secondary punctuation mark
// nearest to (but not past) the limit, falling back to a hard cut at the
// rune limit when no secondary punctuation exists before it.
func (s *Splitter) refine(sentence string) []string {
	runes := []rune(sentence)
	var out []string
	for len(runes) > s.maxLength {
		cut := -1
		for i := 0; i < s.maxLength; i++ {
			if !isSecondaryTerminal(runes[i]) {
				continue
			}
			j := i + 1
			for j < len(runes) && j < s.maxLength && unicode.IsSpace(runes[j]) {
				j++
			}
			cut = j
		}
		if cut <= 0 {
			cut = s.maxLength
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func isPrimaryTerminal(r rune) bool {
	switch r {
	case '。', '．', '！', '？', '.', '!', '?':
		return true
	}
	return false
}

func isSecondaryTerminal(r rune) bool {
	switch r {
	case '，', ',', '、', '；', ';':
		return true
	}
	return false
}
