package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chromaflow/internal/frame"
)

func TestForKnownFamily(t *testing.T) {
	tbl, ok := For("chroma-keyboard")
	require.True(t, ok)
	assert.Equal(t, "chroma-keyboard", tbl.Family)
	assert.Equal(t, 6, tbl.Rows)
	assert.Equal(t, 22, tbl.Cols)

	p, ok := tbl.Position(frame.ZoneEsc)
	require.True(t, ok)
	assert.Equal(t, Position{0, 1}, p)
}

func TestForUnknownFamilyFallsBackToGeneric(t *testing.T) {
	tbl, ok := For("no-such-family")
	assert.False(t, ok)
	assert.Same(t, Generic, tbl)

	// The fallback carries the full keyboard map.
	p, ok := tbl.Position(frame.ZoneSpace)
	require.True(t, ok)
	assert.Equal(t, Position{5, 7}, p)
}

func TestPositionUnmappedZone(t *testing.T) {
	tbl, _ := For("chroma-mouse")
	_, ok := tbl.Position(frame.ZoneEnter)
	assert.False(t, ok)
}

func TestLocalize(t *testing.T) {
	// ANSI: backslash stays put.
	assert.Equal(t, frame.ZoneBackslash, Localize(frame.ZoneBackslash, false))
	// ISO: backslash moves to the hash position next to Enter.
	assert.Equal(t, frame.ZoneISOHash, Localize(frame.ZoneBackslash, true))
	// Other zones are never remapped.
	assert.Equal(t, frame.ZoneA, Localize(frame.ZoneA, true))
}
