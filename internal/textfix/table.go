package textfix

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Table maps a corrupted sequence to the text it should have been.
type Table map[string]string

// punctuation lists the non-Latin-1 characters most often damaged by
// Windows tools, beyond the Latin-1 supplement.
var punctuation = []rune{
	'‘', '’', '‚', '“', '”', '„',
	'–', '—', '…', '•', '€', '™',
	'†', '‡', '‰', '‹', '›', 'ƒ',
	'Œ', 'œ', 'Š', 'š', 'Ž', 'ž', 'Ÿ',
}

// codepages are the single-byte charsets UTF-8 text is commonly misread as.
// Windows-1252 comes first; ISO-8859-1 covers the bytes it leaves undefined
// (0x81, 0x8D, 0x8F, 0x90, 0x9D) and every C1 control that 0x80..0x9F
// becomes when a Latin-1 reader is used.
var codepages = []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1}

// DefaultTable covers U+00A1..U+00FF, the uppercase Latin-1 letters and
// common punctuation, each as single and double mojibake under every
// codepage.
var DefaultTable = buildTable()

func buildTable() Table {
	t := make(Table)
	add := func(cm *charmap.Charmap, r rune) {
		want := string(r)
		once, ok := misread(cm, want)
		if !ok {
			return
		}
		if _, exists := t[once]; !exists {
			t[once] = want
		}
		if twice, ok := misread(cm, once); ok {
			if _, exists := t[twice]; !exists {
				t[twice] = want
			}
		}
	}
	for _, cm := range codepages {
		for r := rune(0xA1); r <= 0xFF; r++ {
			add(cm, r)
		}
		for _, r := range punctuation {
			add(cm, r)
		}
	}
	return t
}

// Mojibake returns s as it appears when its UTF-8 bytes are read as
// Windows-1252. ok is false when the result would be unusable as a lookup
// key (undecodable bytes or no change).
func Mojibake(s string) (string, bool) {
	return misread(charmap.Windows1252, s)
}

// MojibakeLatin1 returns s as it appears when its UTF-8 bytes are read as
// ISO-8859-1. Bytes 0x80..0x9F become C1 control characters.
func MojibakeLatin1(s string) (string, bool) {
	return misread(charmap.ISO8859_1, s)
}

func misread(cm *charmap.Charmap, s string) (string, bool) {
	out, err := cm.NewDecoder().String(s)
	if err != nil || out == s || strings.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return out, true
}

// Repair reverses Mojibake or MojibakeLatin1: it re-encodes s with each
// codepage in turn and returns the first result that is valid UTF-8. ok is
// false when no codepage can encode s into different, valid UTF-8.
func Repair(s string) (string, bool) {
	for _, cm := range codepages {
		raw, err := cm.NewEncoder().String(s)
		if err != nil || raw == s || !utf8.ValidString(raw) {
			continue
		}
		return raw, true
	}
	return "", false
}

// keys returns the table keys longest first, ties broken lexically, so that
// the longest match wins at any position.
func (t Table) keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
