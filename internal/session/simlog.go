package session

import (
	"fmt"
	"strings"
)

// LogEntry is one recorded session event.
type LogEntry struct {
	Tick     int
	Cell     string  // "r,c", or "--" for board-wide events
	Category string  // decision, solver, lock, vision, press, game
	Key      string  // event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for aggregation
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] 3,7    decision  proposed         click (zero)
func (e LogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-6s %-9s %-16s %s",
		e.Tick, e.Cell, e.Category, e.Key, e.Value)
}

// Log collects structured events for a session. Unlike the on-screen bot
// log it is unbounded and machine-readable.
type Log struct {
	entries []LogEntry
	verbose bool
}

// NewLog creates a Log. Verbose also records per-tick outcomes.
func NewLog(verbose bool) *Log {
	return &Log{verbose: verbose}
}

// Add records a new entry.
func (l *Log) Add(tick int, cell, category, key, value string, numVal float64) {
	l.entries = append(l.entries, LogEntry{
		Tick:     tick,
		Cell:     cell,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (l *Log) AddVerbose(tick int, cell, category, key, value string, numVal float64) {
	if !l.verbose {
		return
	}
	l.Add(tick, cell, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (l *Log) Entries() []LogEntry {
	return l.entries
}

// Filter returns entries matching category and key. Empty matches any.
func (l *Log) Filter(category, key string) []LogEntry {
	var out []LogEntry
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (l *Log) FilterTickRange(fromTick, toTick int) []LogEntry {
	var out []LogEntry
	for _, e := range l.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match category and key.
func (l *Log) Count(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the most recent entry matching category and key.
func (l *Log) LastOf(category, key string) (LogEntry, bool) {
	entries := l.Filter(category, key)
	if len(entries) == 0 {
		return LogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an entry matches category, key and contains
// valueSubstr.
func (l *Log) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range l.Filter(category, key) {
		if valueSubstr == "" || strings.Contains(e.Value, valueSubstr) {
			return true
		}
	}
	return false
}

// Format returns the full log, one entry per line.
func (l *Log) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns the log restricted to a tick range.
func (l *Log) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range l.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
