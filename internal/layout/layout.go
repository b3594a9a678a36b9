// Package layout holds the static translation from abstract zones to
// physical device positions. Tables are built once at package init and never
// mutated; a family without its own table shares the one generic full-size
// layout.
package layout

import "chromaflow/internal/frame"

// Position is a cell in a device's native matrix.
type Position struct {
	Row int
	Col int
}

// Table maps zones to matrix cells for one device family.
type Table struct {
	Family string
	Rows   int
	Cols   int
	pos    map[frame.Zone]Position
}

// Position resolves a zone. A zone missing from the table is simply not lit
// on that family; callers skip it.
func (t *Table) Position(z frame.Zone) (Position, bool) {
	p, ok := t.pos[z]
	return p, ok
}

// Localize applies per-call zone aliasing driven by the host keyboard
// layout. On ISO layouts the backslash key sits next to Enter where ANSI
// has the hash key, so the canonical backslash zone is remapped before
// lookup. Evaluated on every call so a runtime layout switch takes effect
// immediately.
func Localize(z frame.Zone, iso bool) frame.Zone {
	if iso && z == frame.ZoneBackslash {
		return frame.ZoneISOHash
	}
	return z
}

// Generic is the shared fallback table for families without a layout of
// their own: a full-size keyboard grid.
var Generic = &Table{Family: "generic", Rows: 6, Cols: 22, pos: keyboardPositions()}

var families = map[string]*Table{
	"chroma-keyboard": {Family: "chroma-keyboard", Rows: 6, Cols: 22, pos: keyboardPositions()},
	"chroma-mouse":    {Family: "chroma-mouse", Rows: 9, Cols: 7, pos: mousePositions()},
}

// For looks up the table for a device family. The second result is false
// when the family is unknown and the generic fallback was returned instead;
// callers use it to log the fallback once per device instance.
func For(family string) (*Table, bool) {
	if t, ok := families[family]; ok {
		return t, true
	}
	return Generic, false
}

func keyboardPositions() map[frame.Zone]Position {
	return map[frame.Zone]Position{
		frame.ZoneEsc:         {0, 1},
		frame.ZoneF1:          {0, 3},
		frame.ZoneF2:          {0, 4},
		frame.ZoneF3:          {0, 5},
		frame.ZoneF4:          {0, 6},
		frame.ZoneF5:          {0, 7},
		frame.ZoneF6:          {0, 8},
		frame.ZoneF7:          {0, 9},
		frame.ZoneF8:          {0, 10},
		frame.ZoneF9:          {0, 11},
		frame.ZoneF10:         {0, 12},
		frame.ZoneF11:         {0, 13},
		frame.ZoneF12:         {0, 14},
		frame.ZonePrintScreen: {0, 15},
		frame.ZoneScrollLock:  {0, 16},
		frame.ZonePause:       {0, 17},

		frame.ZoneTilde:     {1, 1},
		frame.Zone1:         {1, 2},
		frame.Zone2:         {1, 3},
		frame.Zone3:         {1, 4},
		frame.Zone4:         {1, 5},
		frame.Zone5:         {1, 6},
		frame.Zone6:         {1, 7},
		frame.Zone7:         {1, 8},
		frame.Zone8:         {1, 9},
		frame.Zone9:         {1, 10},
		frame.Zone0:         {1, 11},
		frame.ZoneMinus:     {1, 12},
		frame.ZoneEquals:    {1, 13},
		frame.ZoneBackspace: {1, 14},
		frame.ZoneInsert:    {1, 15},
		frame.ZoneHome:      {1, 16},
		frame.ZonePageUp:    {1, 17},

		frame.ZoneTab:          {2, 1},
		frame.ZoneQ:            {2, 2},
		frame.ZoneW:            {2, 3},
		frame.ZoneE:            {2, 4},
		frame.ZoneR:            {2, 5},
		frame.ZoneT:            {2, 6},
		frame.ZoneY:            {2, 7},
		frame.ZoneU:            {2, 8},
		frame.ZoneI:            {2, 9},
		frame.ZoneO:            {2, 10},
		frame.ZoneP:            {2, 11},
		frame.ZoneOpenBracket:  {2, 12},
		frame.ZoneCloseBracket: {2, 13},
		frame.ZoneBackslash:    {2, 14},
		frame.ZoneDelete:       {2, 15},
		frame.ZoneEnd:          {2, 16},
		frame.ZonePageDown:     {2, 17},

		frame.ZoneCapsLock:   {3, 1},
		frame.ZoneA:          {3, 2},
		frame.ZoneS:          {3, 3},
		frame.ZoneD:          {3, 4},
		frame.ZoneF:          {3, 5},
		frame.ZoneG:          {3, 6},
		frame.ZoneH:          {3, 7},
		frame.ZoneJ:          {3, 8},
		frame.ZoneK:          {3, 9},
		frame.ZoneL:          {3, 10},
		frame.ZoneSemicolon:  {3, 11},
		frame.ZoneApostrophe: {3, 12},
		frame.ZoneISOHash:    {3, 13},
		frame.ZoneEnter:      {3, 14},

		frame.ZoneLeftShift:  {4, 1},
		frame.ZoneZ:          {4, 3},
		frame.ZoneX:          {4, 4},
		frame.ZoneC:          {4, 5},
		frame.ZoneV:          {4, 6},
		frame.ZoneB:          {4, 7},
		frame.ZoneN:          {4, 8},
		frame.ZoneM:          {4, 9},
		frame.ZoneComma:      {4, 10},
		frame.ZonePeriod:     {4, 11},
		frame.ZoneSlash:      {4, 12},
		frame.ZoneRightShift: {4, 14},
		frame.ZoneArrowUp:    {4, 16},

		frame.ZoneLeftCtrl:   {5, 1},
		frame.ZoneLeftMeta:   {5, 2},
		frame.ZoneLeftAlt:    {5, 3},
		frame.ZoneSpace:      {5, 7},
		frame.ZoneRightAlt:   {5, 11},
		frame.ZoneFn:         {5, 12},
		frame.ZoneMenu:       {5, 13},
		frame.ZoneRightCtrl:  {5, 14},
		frame.ZoneArrowLeft:  {5, 15},
		frame.ZoneArrowDown:  {5, 16},
		frame.ZoneArrowRight: {5, 17},
	}
}

func mousePositions() map[frame.Zone]Position {
	return map[frame.Zone]Position{
		frame.ZoneMouseScroll: {2, 3},
		frame.ZoneMouseLogo:   {7, 3},
		frame.ZoneMouseLeft1:  {1, 0},
		frame.ZoneMouseLeft2:  {4, 0},
		frame.ZoneMouseRight1: {1, 6},
		frame.ZoneMouseRight2: {4, 6},
	}
}
