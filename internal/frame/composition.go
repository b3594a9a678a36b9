package frame

// Zone is an abstract lighting position, independent of any physical layout.
// Backends translate zones to device positions through the layout tables.
type Zone uint8

// Composition maps zones to colors for a single frame. The renderer produces
// one per frame; backends treat it as read-only for the duration of an
// update and never hold on to it.
type Composition map[Zone]Color

const (
	ZoneNone Zone = iota

	// Function row.
	ZoneEsc
	ZoneF1
	ZoneF2
	ZoneF3
	ZoneF4
	ZoneF5
	ZoneF6
	ZoneF7
	ZoneF8
	ZoneF9
	ZoneF10
	ZoneF11
	ZoneF12
	ZonePrintScreen
	ZoneScrollLock
	ZonePause

	// Number row.
	ZoneTilde
	Zone1
	Zone2
	Zone3
	Zone4
	Zone5
	Zone6
	Zone7
	Zone8
	Zone9
	Zone0
	ZoneMinus
	ZoneEquals
	ZoneBackspace

	// Top letter row.
	ZoneTab
	ZoneQ
	ZoneW
	ZoneE
	ZoneR
	ZoneT
	ZoneY
	ZoneU
	ZoneI
	ZoneO
	ZoneP
	ZoneOpenBracket
	ZoneCloseBracket
	ZoneBackslash

	// Home row.
	ZoneCapsLock
	ZoneA
	ZoneS
	ZoneD
	ZoneF
	ZoneG
	ZoneH
	ZoneJ
	ZoneK
	ZoneL
	ZoneSemicolon
	ZoneApostrophe
	ZoneISOHash
	ZoneEnter

	// Bottom letter row.
	ZoneLeftShift
	ZoneZ
	ZoneX
	ZoneC
	ZoneV
	ZoneB
	ZoneN
	ZoneM
	ZoneComma
	ZonePeriod
	ZoneSlash
	ZoneRightShift

	// Modifier row.
	ZoneLeftCtrl
	ZoneLeftMeta
	ZoneLeftAlt
	ZoneSpace
	ZoneRightAlt
	ZoneFn
	ZoneMenu
	ZoneRightCtrl

	// Navigation cluster and arrows.
	ZoneInsert
	ZoneHome
	ZonePageUp
	ZoneDelete
	ZoneEnd
	ZonePageDown
	ZoneArrowUp
	ZoneArrowDown
	ZoneArrowLeft
	ZoneArrowRight

	// Mouse zones.
	ZoneMouseLogo
	ZoneMouseScroll
	ZoneMouseLeft1
	ZoneMouseLeft2
	ZoneMouseRight1
	ZoneMouseRight2

	// ZonePeripheral is the single aggregate color consumed by zone devices
	// (orbs, bulbs, light bars) that cannot address individual keys.
	ZonePeripheral
)
