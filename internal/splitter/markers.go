package splitter

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MarkerKind distinguishes the two inline voice marker syntaxes.
type MarkerKind int

const (
	// MarkerBracket is a plain [voiceName] tag.
	MarkerBracket MarkerKind = iota
	// MarkerStructured is a JSON tag carrying name plus optional overrides.
	MarkerStructured
)

// Directive is the uniform result of parsing either marker form.
type Directive struct {
	Kind  MarkerKind
	Name  string
	Speed float64 // 0 means inherit from the voice profile
	Seed  int64   // -1 means random
}

var markerPattern = regexp.MustCompile(`\[[^\[\]\n]+\]|\{[^{}\n]*\}`)

type markerSpan struct {
	start     int
	end       int
	directive Directive
}

// scanMarkers finds all voice markers in text. Brace blocks that do not
// parse as a JSON object with a "name" field are treated as literal text.
func scanMarkers(text string) []markerSpan {
	var spans []markerSpan
	for _, loc := range markerPattern.FindAllStringIndex(text, -1) {
		directive, ok := parseMarker(text[loc[0]:loc[1]])
		if !ok {
			continue
		}
		spans = append(spans, markerSpan{start: loc[0], end: loc[1], directive: directive})
	}
	return spans
}

func parseMarker(raw string) (Directive, bool) {
	if strings.HasPrefix(raw, "[") {
		name := strings.TrimSpace(raw[1 : len(raw)-1])
		if name == "" {
			return Directive{}, false
		}
		return Directive{Kind: MarkerBracket, Name: name, Seed: -1}, true
	}

	var payload struct {
		Name  string  `json:"name"`
		Speed float64 `json:"speed"`
		Seed  *int64  `json:"seed"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Directive{}, false
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return Directive{}, false
	}
	directive := Directive{Kind: MarkerStructured, Name: name, Speed: payload.Speed, Seed: -1}
	if payload.Seed != nil {
		directive.Seed = *payload.Seed
	}
	return directive, true
}
