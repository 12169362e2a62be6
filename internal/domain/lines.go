package domain

import "math"

// MaxAddressableLines is the number of line indexes a GET command can name.
// Indexes are 16-bit, so lines past 65535 are loaded but never served.
const MaxAddressableLines = math.MaxUint16 + 1

// Lines is the immutable, 0-indexed line store shared by every session.
type Lines struct {
	lines []string
}

// NewLines copies src so later mutation by the caller cannot reach sessions.
func NewLines(src []string) *Lines {
	lines := make([]string, len(src))
	copy(lines, src)
	return &Lines{lines: lines}
}

func (l *Lines) Len() int {
	if l == nil {
		return 0
	}
	return len(l.lines)
}

// Line returns the line at index, or ErrLineOutOfRange.
func (l *Lines) Line(index int) (string, error) {
	if index < 0 || index >= l.Len() {
		return "", ErrLineOutOfRange
	}
	return l.lines[index], nil
}

// Addressable returns how many lines a client can reach with a 16-bit index.
func (l *Lines) Addressable() int {
	return min(l.Len(), MaxAddressableLines)
}

// Stats summarizes the store for diagnostics.
func (l *Lines) Stats() LineStats {
	stats := LineStats{Total: l.Len(), Addressable: l.Addressable(), LongestIndex: -1}
	for i := 0; i < l.Len(); i++ {
		line := l.lines[i]
		stats.Bytes += len(line)
		if line == "" {
			stats.Blank++
		}
		if stats.LongestIndex < 0 || len(line) > stats.Longest {
			stats.Longest = len(line)
			stats.LongestIndex = i
		}
	}
	return stats
}

type LineStats struct {
	Total        int
	Addressable  int
	Blank        int
	Bytes        int
	Longest      int
	LongestIndex int
}
