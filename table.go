package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/espeak-phonemizer/internal/phonemes"
)

const (
	columnGap    = "  "
	ellipsis     = "…"
	minTextWidth = 8
	maxTextWidth = 40
)

// renderTable lays results out as line number, input text and phonemes,
// truncating the text and phoneme columns to fit width cells.
func renderTable(results []phonemes.LineResult, width int) string {
	if len(results) == 0 {
		return ""
	}

	numWidth := len(strconv.Itoa(results[len(results)-1].Line))

	textWidth := minTextWidth
	for _, r := range results {
		if w := runewidth.StringWidth(r.Text); w > textWidth {
			textWidth = w
		}
	}
	textWidth = min(textWidth, maxTextWidth)

	phonemeWidth := width - numWidth - textWidth - 2*len(columnGap)
	if phonemeWidth < minTextWidth {
		// Narrow terminal: split the remaining space evenly.
		avail := max(width-numWidth-2*len(columnGap), 2*minTextWidth)
		textWidth = avail / 2
		phonemeWidth = avail - textWidth
	}

	var b strings.Builder
	for _, r := range results {
		num := fmt.Sprintf("%*d", numWidth, r.Line)
		text := fitCell(r.Text, textWidth)

		var out string
		switch {
		case r.Skipped:
			out = faint("-")
		case r.Err != nil:
			out = errorText(truncateCell(r.Err.Error(), phonemeWidth))
		default:
			out = keyword(truncateCell(r.Phonemes, phonemeWidth))
		}

		b.WriteString(faint(num))
		b.WriteString(columnGap)
		b.WriteString(text)
		b.WriteString(columnGap)
		b.WriteString(out)
		b.WriteByte('\n')
	}
	return b.String()
}

// truncateCell cuts s to at most width cells, marking the cut with an
// ellipsis.
func truncateCell(s string, width int) string {
	s = strings.ReplaceAll(s, "\t", " ")
	if runewidth.StringWidth(s) > width {
		s = truncate.StringWithTail(s, uint(width), ellipsis) //nolint:gosec
	}
	return s
}

// fitCell truncates s to width cells and pads it to exactly width.
func fitCell(s string, width int) string {
	return runewidth.FillRight(truncateCell(s, width), width)
}
