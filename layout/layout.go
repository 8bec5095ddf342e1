// Package layout breaks message text into display lines that fit a pixel
// width.
package layout

import (
	"strings"
	"unicode/utf8"
)

// Measurer reports the rendered width in pixels of text at an integer scale.
type Measurer interface {
	MeasureText(text string, scale int) int
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(text string, scale int) int

// MeasureText calls f(text, scale).
func (f MeasurerFunc) MeasureText(text string, scale int) int {
	return f(text, scale)
}

// Engine wraps text against a fixed maximum width. The same Engine must be
// used for counting lines and for drawing them, otherwise pagination and the
// scrollbar drift from what is on screen.
type Engine struct {
	Measurer Measurer
	MaxWidth int
	Scale    int
}

// New returns an Engine measuring at scale 1.
func New(m Measurer, maxWidth int) *Engine {
	return &Engine{Measurer: m, MaxWidth: maxWidth, Scale: 1}
}

func (e *Engine) width(s string) int {
	scale := e.Scale
	if scale < 1 {
		scale = 1
	}
	return e.Measurer.MeasureText(s, scale)
}

// Wrap returns the lines text occupies. Hard newlines always break. Words are
// packed greedily; a word that alone is wider than MaxWidth is split between
// runes. The result always holds at least one line.
func (e *Engine) Wrap(text string) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = e.wrapParagraph(lines, para)
	}
	return lines
}

// Count returns len(e.Wrap(text)).
func (e *Engine) Count(text string) int {
	return len(e.Wrap(text))
}

func (e *Engine) wrapParagraph(lines []string, para string) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return append(lines, "")
	}

	var cur strings.Builder
	for _, w := range words {
		if cur.Len() > 0 {
			if e.width(cur.String()+" "+w) <= e.MaxWidth {
				cur.WriteByte(' ')
				cur.WriteString(w)
				continue
			}
			lines = append(lines, cur.String())
			cur.Reset()
		}

		if e.width(w) <= e.MaxWidth {
			cur.WriteString(w)
			continue
		}

		// The word cannot fit on any line: emit full chunks and keep the
		// remainder open so following words may join it.
		chunks := e.splitRunes(w)
		lines = append(lines, chunks[:len(chunks)-1]...)
		cur.WriteString(chunks[len(chunks)-1])
	}
	return append(lines, cur.String())
}

// splitRunes cuts s into the longest prefixes that fit MaxWidth. A rune that
// is wider than MaxWidth on its own still gets a chunk, so progress is
// guaranteed.
func (e *Engine) splitRunes(s string) []string {
	var chunks []string
	start := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		if i > start && e.width(s[start:i+size]) > e.MaxWidth {
			chunks = append(chunks, s[start:i])
			start = i
		}
		i += size
	}
	return append(chunks, s[start:])
}
