package segmenter

import "strings"

// fenceState tracks whether a fenced code block is open while scanning lines.
type fenceState struct {
	open   bool
	marker byte
	length int
}

// openFence parses line as a fence opener. The zero value means it is not one.
func openFence(line string) fenceState {
	trimmed := strings.TrimLeft(line, " ")
	if len(trimmed) < 3 {
		return fenceState{}
	}
	marker := trimmed[0]
	if marker != '`' && marker != '~' {
		return fenceState{}
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == marker {
		n++
	}
	if n < 3 {
		return fenceState{}
	}
	// Backtick fences may not carry backticks in their info string.
	if marker == '`' && strings.ContainsRune(trimmed[n:], '`') {
		return fenceState{}
	}
	return fenceState{open: true, marker: marker, length: n}
}

// closedBy reports whether line closes the open fence.
func (f fenceState) closedBy(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < f.length {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != f.marker {
			return false
		}
	}
	return true
}

// observe advances the fence state past line.
func (f *fenceState) observe(line string) {
	if f.open {
		if f.closedBy(line) {
			*f = fenceState{}
		}
		return
	}
	*f = openFence(line)
}
