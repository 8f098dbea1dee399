package entities

import (
	"fmt"
	"strings"
)

// NotesDelimiter separates free notes text from slot records
const NotesDelimiter = "--- Do not edit below this line ---"

// Slot is a named element discovered through a slide's notes
type Slot struct {
	Name       string `json:"name"`
	Element    string `json:"element"`
	SlideIndex int    `json:"slide_index"`
	Slide      *Slide `json:"-"`
}

// SlotRecord is one name/element pair from a notes section
type SlotRecord struct {
	Name    string
	Element string
}

// HasSlotSection reports whether notes contain the slot delimiter
func HasSlotSection(notes string) bool {
	return strings.Contains(notes, NotesDelimiter)
}

// ParseSlotRecords parses the text after the last delimiter occurrence.
// Each non-blank line must split on a tab into name and element. Errors
// name the 1-based line of the notes.
func ParseSlotRecords(notes string) ([]SlotRecord, error) {
	idx := strings.LastIndex(notes, NotesDelimiter)
	if idx < 0 {
		return nil, nil
	}
	raw := notes[idx+len(NotesDelimiter):]
	delimLine := strings.Count(notes[:idx], "\n") + 1

	var records []SlotRecord
	for n, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		line = strings.TrimSuffix(line, "\r")
		name, element, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%w: line %d %q has no tab", ErrMalformedSlot, delimLine+n, line)
		}
		records = append(records, SlotRecord{Name: name, Element: element})
	}
	return records, nil
}

// Slots discovers named elements declared in slide notes below the
// delimiter line, in slide order.
func (d *Deck) Slots() ([]Slot, error) {
	var slots []Slot
	for i, slide := range d.Slides {
		if !HasSlotSection(slide.Notes) {
			continue
		}
		records, err := ParseSlotRecords(slide.Notes)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		for _, r := range records {
			slots = append(slots, Slot{
				Name:       r.Name,
				Element:    r.Element,
				SlideIndex: i,
				Slide:      slide,
			})
		}
	}
	return slots, nil
}
