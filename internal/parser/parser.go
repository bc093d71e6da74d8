// Package parser extracts flashcard notes from markdown files.
//
// A note is a block of directive lines separated from the next note by
// a "---" line:
//
//	Q: front of the card (may continue on following lines)
//	A: back of the card
//	C: optional context, stored on the owning note
//	R:
//
// An R: directive requests a reverse (back-to-front) card for the note.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Note is one parsed flashcard note.
type Note struct {
	Front   string
	Back    string
	Context string
	Reverse bool
}

const (
	frontPrefix   = "Q:"
	backPrefix    = "A:"
	contextPrefix = "C:"
	reversePrefix = "R:"
	separator     = "---"
)

type section int

const (
	none section = iota
	front
	back
	contextSection
)

// ParseFile reads the file at path and extracts all flashcard notes.
func ParseFile(path string) ([]Note, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads markdown from r and extracts all flashcard notes. Notes
// without a front are dropped.
func Parse(r io.Reader) ([]Note, error) {
	scanner := bufio.NewScanner(r)

	var (
		notes   []Note
		current Note
		block   []string
		active  section
	)

	closeBlock := func() {
		if len(block) == 0 {
			return
		}
		text := strings.Join(block, "\n")
		switch active {
		case front:
			current.Front = text
		case back:
			current.Back = text
		case contextSection:
			current.Context = text
		}
		block = nil
	}

	closeNote := func() {
		closeBlock()
		if current.Front != "" {
			notes = append(notes, current)
		}
		current = Note{}
		active = none
	}

	openBlock := func(s section, line, prefix string) {
		closeBlock()
		active = s
		block = append(block, strings.TrimPrefix(strings.TrimPrefix(line, prefix), " "))
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == separator:
			closeNote()
		case strings.HasPrefix(line, frontPrefix):
			// A new front always starts a new note.
			if active != none {
				closeNote()
			}
			openBlock(front, line, frontPrefix)
		case strings.HasPrefix(line, backPrefix):
			openBlock(back, line, backPrefix)
		case strings.HasPrefix(line, contextPrefix):
			openBlock(contextSection, line, contextPrefix)
		case strings.HasPrefix(line, reversePrefix):
			closeBlock()
			current.Reverse = true
			active = none
		default:
			if active != none {
				block = append(block, line)
			}
		}
	}
	closeNote()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}
