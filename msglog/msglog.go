// Package msglog holds the append-only list of messages shown on screen.
package msglog

import (
	"github.com/picoportal/picoportal/gfx"
	"github.com/picoportal/picoportal/layout"
)

// Marker is prepended to every message body.
const Marker = "> "

// TimeLayout is the timestamp format stored with each entry.
const TimeLayout = "2006-01-02 15:04:05"

// Entry is one logged message. Entries are immutable once appended.
type Entry struct {
	Text      string // body, marker included
	Pen       gfx.Pen
	Timestamp string // empty when the entry has no timestamp line
}

// TimestampLine returns the rendered form of the timestamp, or "" if the
// entry has none.
func (e Entry) TimestampLine() string {
	if e.Timestamp == "" {
		return ""
	}
	return "[" + e.Timestamp + "]"
}

// Lines returns the number of display lines the entry occupies.
func (e Entry) Lines(eng *layout.Engine) int {
	n := eng.Count(e.Text)
	if e.Timestamp != "" {
		n++
	}
	return n
}

// Log is an ordered, append-only sequence of entries. The zero value is an
// empty log. Log does no locking of its own.
type Log struct {
	entries []Entry
}

// Append stores a new entry and returns it. timestamp is stored verbatim;
// pass "" for none.
func (l *Log) Append(text string, pen gfx.Pen, timestamp string) Entry {
	e := Entry{Text: Marker + text, Pen: pen, Timestamp: timestamp}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns the entries in insertion order. The slice must not be
// modified.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// TotalLines recomputes the wrapped line count of the whole log.
func (l *Log) TotalLines(eng *layout.Engine) int {
	total := 0
	for _, e := range l.entries {
		total += e.Lines(eng)
	}
	return total
}
