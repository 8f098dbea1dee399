package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotRecords(t *testing.T) {
	t.Run("no delimiter", func(t *testing.T) {
		records, err := ParseSlotRecords("just some notes")
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.False(t, HasSlotSection("just some notes"))
	})

	t.Run("records after delimiter", func(t *testing.T) {
		notes := "Speaker notes\n" + NotesDelimiter + "\nsummary\t1\n\nchart\tph:2\n"
		assert.True(t, HasSlotSection(notes))

		records, err := ParseSlotRecords(notes)
		require.NoError(t, err)
		assert.Equal(t, []SlotRecord{
			{Name: "summary", Element: "1"},
			{Name: "chart", Element: "ph:2"},
		}, records)
	})

	t.Run("only last delimiter counts", func(t *testing.T) {
		notes := NotesDelimiter + "\nno tab here\n" + NotesDelimiter + "\nlogo\tPicture 3"

		records, err := ParseSlotRecords(notes)
		require.NoError(t, err)
		assert.Equal(t, []SlotRecord{{Name: "logo", Element: "Picture 3"}}, records)
	})

	t.Run("split once on tab", func(t *testing.T) {
		records, err := ParseSlotRecords(NotesDelimiter + "\nname\tTitle\t1\r\n")
		require.NoError(t, err)
		assert.Equal(t, []SlotRecord{{Name: "name", Element: "Title\t1"}}, records)
	})

	t.Run("line without tab", func(t *testing.T) {
		_, err := ParseSlotRecords(NotesDelimiter + "\nsummary 1")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedSlot)
		assert.Contains(t, err.Error(), "summary 1")
		assert.Contains(t, err.Error(), "line 2 ")
	})

	t.Run("line numbers count from the top of the notes", func(t *testing.T) {
		notes := "Speaker notes\nmore\n" + NotesDelimiter + "\nok\t1\n\nbroken"
		_, err := ParseSlotRecords(notes)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedSlot)
		assert.Contains(t, err.Error(), `line 6 "broken"`)
	})

	t.Run("text after the delimiter on its own line", func(t *testing.T) {
		_, err := ParseSlotRecords("intro\n" + NotesDelimiter + " trailing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `line 2 " trailing"`)
	})
}

func TestDeck_Slots(t *testing.T) {
	deck := NewDeck(nil)
	layout, err := deck.Template.Layout(LayoutTitleAndContent)
	require.NoError(t, err)

	plain := deck.AddSlide(layout)
	plain.Notes = "nothing to see"
	first := deck.AddSlide(layout)
	first.Notes = "intro\n" + NotesDelimiter + "\nsummary\t1"
	second := deck.AddSlide(layout)
	second.Notes = NotesDelimiter + "\nheading\tph:0\nbody\tContent Placeholder 2"

	slots, err := deck.Slots()
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "summary", slots[0].Name)
	assert.Equal(t, 1, slots[0].SlideIndex)
	assert.Same(t, first, slots[0].Slide)
	assert.Equal(t, "ph:0", slots[1].Element)
	assert.Equal(t, 2, slots[2].SlideIndex)

	second.Notes = NotesDelimiter + "\nbroken"
	_, err = deck.Slots()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedSlot)
	assert.Contains(t, err.Error(), "slide 3")
}
