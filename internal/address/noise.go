package address

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinAlnumRatio is the minimum share of letters and digits in a usable line.
const MinAlnumRatio = 0.6

// MaxThinGlyphRatio is the maximum share of i/l/1/|/! glyphs before a line
// is treated as OCR hash from vertical edges.
const MaxThinGlyphRatio = 0.4

var shortStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "was": true, "are": true,
	"but": true, "not": true, "you": true, "all": true, "can": true,
}

var noiseShapes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^[a-z\s]{1,3}$`),
	regexp.MustCompile(`^[—\-\s]+$`),
	regexp.MustCompile(`^[^\p{L}\p{N}_]+$`),
	regexp.MustCompile(`(?i)^[aeiouy\s]+$`),
	regexp.MustCompile(`^[^\p{L}]*$`),
	regexp.MustCompile(`(?i)^\p{L}\s\p{L}\s\p{L}`),
	regexp.MustCompile(`^[—\-]{2,}`),
}

// IsNoise reports whether an OCR line is unusable garbage.
func IsNoise(line string) bool {
	clean := strings.TrimSpace(line)
	n := utf8.RuneCountInString(clean)
	if n < 3 {
		return true
	}

	var alnum, letters, thin int
	unique := make(map[rune]struct{})
	for _, r := range clean {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
		if unicode.IsLetter(r) {
			letters++
		}
		if !unicode.IsSpace(r) {
			unique[unicode.ToLower(r)] = struct{}{}
		}
		switch unicode.ToLower(r) {
		case 'i', 'l', '1', '|', '!':
			thin++
		}
	}
	if float64(alnum)/float64(n) < MinAlnumRatio {
		return true
	}
	if letters < 2 {
		return true
	}
	if strings.Contains(clean, "   ") || strings.Contains(clean, "———") || hasPunctRun(clean, 3) {
		return true
	}
	if len(unique) < 3 {
		return true
	}
	if n <= 4 {
		compact := strings.ReplaceAll(clean, " ", "")
		for _, r := range compact {
			if !unicode.IsLetter(r) {
				return true
			}
		}
		if shortStopWords[strings.ToLower(clean)] {
			return true
		}
	}
	for _, re := range noiseShapes {
		if re.MatchString(clean) {
			return true
		}
	}
	if n > 3 && float64(thin)/float64(n) > MaxThinGlyphRatio {
		return true
	}
	return false
}

// hasPunctRun reports a run of at least n identical punctuation or symbol runes.
func hasPunctRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			run = 0
			prev = 0
			continue
		}
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run >= n {
			return true
		}
	}
	return false
}

// normalizeLine trims and collapses internal whitespace.
func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// FilterLines drops noise, normalizes whitespace and removes duplicates while
// keeping first-seen order. Its output is a fixed point: filtering it again
// returns the same lines.
func FilterLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		for _, part := range strings.Split(raw, "\n") {
			line := normalizeLine(part)
			if IsNoise(line) {
				continue
			}
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			out = append(out, line)
		}
	}
	return out
}

// SplitText splits a block of OCR text into lines.
func SplitText(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
