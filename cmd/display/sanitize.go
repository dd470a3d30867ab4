package display

import "strings"

// Placeholder replaces each run of characters the renderer cannot draw.
const Placeholder = "[?]"

// FallbackName is returned when nothing printable is left.
const FallbackName = "audio_file"

var emojiNames = []struct{ emoji, name string }{
	{"❤️", "[heart]"},
	{"🥴", "[dizzy]"},
	{"😍", "[heart_eyes]"},
	{"😀", "[smile]"},
	{"😂", "[laugh]"},
	{"😊", "[happy]"},
	{"👍", "[thumbs_up]"},
	{"❤", "[heart]"},
	{"🔥", "[fire]"},
	{"💯", "[100]"},
	{"🎵", "[music]"},
	{"🎶", "[notes]"},
	{"🎮", "[game]"},
	{"🏆", "[trophy]"},
	{"⭐", "[star]"},
	{"✨", "[sparkle]"},
}

var emojiReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(emojiNames)*2)
	for _, e := range emojiNames {
		pairs = append(pairs, e.emoji, e.name)
	}
	return strings.NewReplacer(pairs...)
}()

// SafeRune reports whether r can be drawn by the plot font: ASCII printable,
// Latin-1 supplement, CJK unified ideographs, CJK symbols and punctuation, and
// a handful of fullwidth punctuation marks.
func SafeRune(r rune) bool {
	switch {
	case r >= 0x20 && r <= 0x7E:
		return true
	case r >= 0xA0 && r <= 0xFF:
		return true
	case r >= 0x4E00 && r <= 0x9FFF:
		return true
	case r >= 0x3000 && r <= 0x303F:
		return true
	}
	switch r {
	case '，', '；', '：', '？', '！', '（', '）':
		return true
	}
	return false
}

// SanitizeFilename makes a title safe to render. Known emoji become bracketed
// names, every other run of unsafe characters (control characters such as
// tabs included) becomes one Placeholder, spaces are collapsed, and a result
// that is blank or placeholder-only becomes FallbackName. Empty input is
// returned as is. SanitizeFilename(SanitizeFilename(s)) == SanitizeFilename(s).
func SanitizeFilename(s string) string {
	if s == "" {
		return s
	}
	s = emojiReplacer.Replace(s)

	var b strings.Builder
	inUnsafe := false
	for _, r := range s {
		if SafeRune(r) {
			if isSpace(r) {
				r = ' '
			}
			b.WriteRune(r)
			inUnsafe = false
			continue
		}
		if !inUnsafe {
			b.WriteString(Placeholder)
			inUnsafe = true
		}
	}

	out := mergePlaceholders(b.String())
	out = strings.Join(strings.Fields(out), " ")

	if strings.Trim(strings.ReplaceAll(out, Placeholder, ""), " ") == "" {
		return FallbackName
	}
	return out
}

// isSpace covers the spaces inside the safe ranges: ASCII space, U+00A0 and
// U+3000.
func isSpace(r rune) bool {
	return r == ' ' || r == 0xA0 || r == 0x3000
}

func mergePlaceholders(s string) string {
	double := Placeholder + Placeholder
	for strings.Contains(s, double) {
		s = strings.ReplaceAll(s, double, Placeholder)
	}
	return s
}
