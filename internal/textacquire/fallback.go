package textacquire

import (
	"bytes"
	"compress/zlib"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// Literal string and hex string tokens, the two inline-text encodings a PDF
// content stream can carry.
var (
	reLiteral = regexp.MustCompile(`\(([^()\\]{2,})\)`)
	reHex     = regexp.MustCompile(`<([0-9A-Fa-f]{4,})>`)
	reStream  = regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)
)

// scanContentStreams is the heuristic extraction path: pull delimited text
// tokens out of the raw bytes and out of any zlib-compressed content streams,
// keep the ones that look like prose, and normalise whitespace.
func scanContentStreams(data []byte) string {
	var parts []string
	parts = append(parts, scanTokens(data)...)

	for _, m := range reStream.FindAllSubmatch(data, -1) {
		inflated, err := inflate(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, scanTokens(inflated)...)
	}

	return collapseWhitespace(strings.Join(parts, " "))
}

// scanTokens extracts candidate text fragments from one byte region.
func scanTokens(data []byte) []string {
	var out []string
	for _, m := range reLiteral.FindAllSubmatch(data, -1) {
		if s := cleanFragment(string(m[1])); s != "" {
			out = append(out, s)
		}
	}
	for _, m := range reHex.FindAllSubmatch(data, -1) {
		if s := cleanFragment(decodeHexString(m[1])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// cleanFragment strips control characters and drops fragments with no
// alphabetic content (positioning numbers, font selectors and the like).
func cleanFragment(s string) string {
	var b strings.Builder
	hasAlpha := false
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		if unicode.IsLetter(r) {
			hasAlpha = true
		}
		b.WriteRune(r)
	}
	if !hasAlpha {
		return ""
	}
	return strings.TrimSpace(b.String())
}

// decodeHexString interprets a PDF hex string as Latin-1 bytes. Fragments that
// are actually UTF-16 glyph indexes decode to garbage and get filtered by the
// alphabetic check.
func decodeHexString(raw []byte) string {
	var b strings.Builder
	for i := 0; i+1 < len(raw); i += 2 {
		hi := hexVal(raw[i])
		lo := hexVal(raw[i+1])
		if hi < 0 || lo < 0 {
			return ""
		}
		b.WriteByte(byte(hi<<4 | lo))
	}
	return b.String()
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	// malformed tails are common; keep whatever inflated cleanly
	out, err := io.ReadAll(r)
	if len(out) == 0 && err != nil {
		return nil, err
	}
	return out, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
