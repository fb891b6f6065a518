package llm

import "unicode/utf8"

// OmissionMarker is inserted where middle content was dropped by windowing.
const OmissionMarker = "\n\n[... MIDDLE CONTENT OMITTED TO FIT MODEL CONTEXT — DOCUMENT CONTINUES ...]\n\n"

// Window bounds text to the model's input budget. Text at or under maxChars
// passes through untouched; anything longer keeps the first and last
// maxChars/2 bytes joined by OmissionMarker, preserving header/identity
// material at the start and closing/signature material at the end. Both cut
// points snap to rune boundaries so the window never carries a split rune.
//
// Pure function, no side effects.
func Window(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	half := maxChars / 2

	headEnd := half
	for headEnd > 0 && !utf8.RuneStart(text[headEnd]) {
		headEnd--
	}
	tailStart := len(text) - half
	for tailStart < len(text) && !utf8.RuneStart(text[tailStart]) {
		tailStart++
	}
	return text[:headEnd] + OmissionMarker + text[tailStart:]
}
