// Package splitter turns article text into ordered sentence segments with
// voice assignments. It is pure: no I/O, deterministic for a given input.
//
// Inline voice markers select the profile for subsequent text. Two marker
// forms are recognized and normalized into one Directive: bracket tags like
// [narrator], and structured JSON tags like {"name": "narrator", "speed":
// 1.2, "seed": -1}. Marker tokens never appear in segment text.
//
// Concatenating the returned segment texts in index order reproduces the
// source text with marker tokens removed. Whitespace following a sentence
// terminal stays attached to the preceding segment to keep that property
// byte-exact. A voice run containing only whitespace yields no segment.
package splitter
