package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	whitespace     = regexp.MustCompile(`\s+`)
)

// Splitter finds sentence boundaries in plain text.
type Splitter struct {
	abbreviations map[string]bool
	titleAbbrevs  map[string]bool
}

// NewSplitter creates a Splitter with the default English abbreviation
// lists.
func NewSplitter() *Splitter {
	return &Splitter{
		abbreviations: defaultAbbreviations(),
		titleAbbrevs:  defaultTitleAbbreviations(),
	}
}

// Sentences splits text into trimmed, non-empty sentences. Paragraph breaks
// always end a sentence.
func (s *Splitter) Sentences(text string) []string {
	text = cleanText(text)

	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])

		if s.isSentenceBoundary(runes, i) {
			if sentence := strings.TrimSpace(current.String()); sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}

	if sentence := strings.TrimSpace(current.String()); sentence != "" {
		sentences = append(sentences, sentence)
	}

	return sentences
}

// Chunks packs the sentences of text into chunks of at most maxRunes runes,
// joining neighbours with a single space. A sentence longer than maxRunes is
// split on whitespace, and a single word longer than maxRunes is split on
// rune boundaries. Every returned chunk is non-empty.
func (s *Splitter) Chunks(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}
	add := func(piece string) {
		n := utf8.RuneCountInString(piece)
		if currentLen > 0 && currentLen+1+n > maxRunes {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(piece)
		currentLen += n
	}

	for _, sentence := range s.Sentences(text) {
		if utf8.RuneCountInString(sentence) <= maxRunes {
			add(sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			for _, piece := range splitRunes(word, maxRunes) {
				add(piece)
			}
		}
	}
	flush()

	return chunks
}

// splitRunes cuts word into pieces of at most n runes.
func splitRunes(word string, n int) []string {
	if utf8.RuneCountInString(word) <= n {
		return []string{word}
	}

	var pieces []string
	runes := []rune(word)
	for len(runes) > n {
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}

func (s *Splitter) isSentenceBoundary(runes []rune, pos int) bool {
	if pos >= len(runes)-1 {
		return true
	}

	current := runes[pos]
	if current == '\n' {
		return true
	}
	// "Hello." She said: the boundary follows the closing quote.
	if isQuote(current) && pos > 0 && isTerminal(runes[pos-1]) {
		return unicode.IsSpace(runes[pos+1]) && nextIsUpper(runes, pos+1)
	}
	if !isTerminal(current) {
		return false
	}

	if current == '.' {
		if isEllipsis(runes, pos) || isDecimalNumber(runes, pos) {
			return false
		}
		if word := wordBefore(runes, pos); s.abbreviations[word] {
			// Titles are followed by a name, never a new sentence.
			if s.titleAbbrevs[word] {
				return false
			}
			return nextIsUpper(runes, pos+1)
		}
	}

	if isQuote(runes[pos+1]) {
		return false
	}

	if !unicode.IsSpace(runes[pos+1]) {
		return false
	}
	return nextIsUpper(runes, pos+1) || !unicode.IsLetter(nextNonSpace(runes, pos+1))
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '”' || r == '’'
}

// wordBefore returns the lowercased word ending just before pos.
func wordBefore(runes []rune, pos int) string {
	start := pos - 1
	for start >= 0 && !unicode.IsSpace(runes[start]) {
		start--
	}
	start++
	if start >= pos {
		return ""
	}
	return strings.ToLower(string(runes[start:pos]))
}

func nextNonSpace(runes []rune, from int) rune {
	for i := from; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return runes[i]
		}
	}
	return 0
}

func nextIsUpper(runes []rune, from int) bool {
	return unicode.IsUpper(nextNonSpace(runes, from))
}

func isDecimalNumber(runes []rune, pos int) bool {
	return pos > 0 && pos+1 < len(runes) &&
		unicode.IsDigit(runes[pos-1]) && unicode.IsDigit(runes[pos+1])
}

func isEllipsis(runes []rune, pos int) bool {
	if pos > 0 && runes[pos-1] == '.' {
		return pos+1 < len(runes) && runes[pos+1] == '.'
	}
	return pos+1 < len(runes) && runes[pos+1] == '.'
}

// cleanText turns paragraph breaks into newlines and collapses every other
// run of whitespace into one space.
func cleanText(text string) string {
	paragraphs := paragraphBreak.Split(strings.TrimSpace(text), -1)
	for i, p := range paragraphs {
		paragraphs[i] = strings.TrimSpace(whitespace.ReplaceAllString(p, " "))
	}
	return strings.Join(paragraphs, "\n")
}

func defaultAbbreviations() map[string]bool {
	return map[string]bool{
		// Titles
		"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
		"sr": true, "jr": true, "st": true,

		// Common
		"etc": true, "vs": true, "e.g": true, "i.e": true, "approx": true,
		"inc": true, "ltd": true, "co": true, "corp": true, "no": true,
		"jan": true, "feb": true, "mar": true, "apr": true, "jun": true,
		"jul": true, "aug": true, "sep": true, "sept": true, "oct": true,
		"nov": true, "dec": true,

		// Units
		"ft": true, "in": true, "yd": true, "mi": true,
		"mm": true, "cm": true, "km": true,
		"oz": true, "lb": true, "kg": true,
		"sec": true, "min": true, "hr": true,
	}
}

func defaultTitleAbbreviations() map[string]bool {
	return map[string]bool{
		"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
		"sr": true, "jr": true, "st": true,
	}
}
