package hid

// Key is a HID Keyboard/Keypad page usage ID (HID Usage Tables, 0x07).
// Usages 0xE0..0xE7 are the modifier keys.
type Key uint8

// Non-printing keys.
const (
	KeyNone      Key = 0x00
	KeyEnter     Key = 0x28
	KeyEscape    Key = 0x29
	KeyBackspace Key = 0x2A
	KeyTab       Key = 0x2B
	KeySpace     Key = 0x2C
	KeyCapsLock  Key = 0x39
	KeyF1        Key = 0x3A
	KeyF12       Key = 0x45
	KeyInsert    Key = 0x49
	KeyHome      Key = 0x4A
	KeyPageUp    Key = 0x4B
	KeyDelete    Key = 0x4C
	KeyEnd       Key = 0x4D
	KeyPageDown  Key = 0x4E
	KeyRight     Key = 0x4F
	KeyLeft      Key = 0x50
	KeyDown      Key = 0x51
	KeyUp        Key = 0x52
)

// Modifier keys.
const (
	KeyLeftCtrl   Key = 0xE0
	KeyLeftShift  Key = 0xE1
	KeyLeftAlt    Key = 0xE2
	KeyLeftGUI    Key = 0xE3
	KeyRightCtrl  Key = 0xE4
	KeyRightShift Key = 0xE5
	KeyRightAlt   Key = 0xE6
	KeyRightGUI   Key = 0xE7
)

// Modifier is the bit set carried in the first byte of a keyboard report.
type Modifier uint8

const (
	ModLeftCtrl Modifier = 1 << iota
	ModLeftShift
	ModLeftAlt
	ModLeftGUI
	ModRightCtrl
	ModRightShift
	ModRightAlt
	ModRightGUI
)

// IsModifier reports whether k is one of the eight modifier usages.
func (k Key) IsModifier() bool {
	return k >= KeyLeftCtrl && k <= KeyRightGUI
}

// Modifier returns the report bit for a modifier key, or 0.
func (k Key) Modifier() Modifier {
	if !k.IsModifier() {
		return 0
	}
	return 1 << (k - KeyLeftCtrl)
}

// US keyboard layout for the printable specials. Letters and digits are
// computed in lookupASCII.
var asciiSpecials = map[byte]struct {
	key   Key
	shift bool
}{
	'\b': {KeyBackspace, false},
	'\t': {KeyTab, false},
	'\n': {KeyEnter, false},
	' ':  {KeySpace, false},
	'!':  {0x1E, true},
	'"':  {0x34, true},
	'#':  {0x20, true},
	'$':  {0x21, true},
	'%':  {0x22, true},
	'&':  {0x24, true},
	'\'': {0x34, false},
	'(':  {0x26, true},
	')':  {0x27, true},
	'*':  {0x25, true},
	'+':  {0x2E, true},
	',':  {0x36, false},
	'-':  {0x2D, false},
	'.':  {0x37, false},
	'/':  {0x38, false},
	':':  {0x33, true},
	';':  {0x33, false},
	'<':  {0x36, true},
	'=':  {0x2E, false},
	'>':  {0x37, true},
	'?':  {0x38, true},
	'@':  {0x1F, true},
	'[':  {0x2F, false},
	'\\': {0x31, false},
	']':  {0x30, false},
	'^':  {0x23, true},
	'_':  {0x2D, true},
	'`':  {0x35, false},
	'{':  {0x2F, true},
	'|':  {0x31, true},
	'}':  {0x30, true},
	'~':  {0x35, true},
}

// lookupASCII maps a byte to its key and shift state. ok is false for bytes
// with no key on a US layout (control characters including CR, DEL, and
// anything above 0x7F); those are skipped when printing.
func lookupASCII(c byte) (key Key, shift bool, ok bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return Key(0x04 + c - 'a'), false, true
	case c >= 'A' && c <= 'Z':
		return Key(0x04 + c - 'A'), true, true
	case c >= '1' && c <= '9':
		return Key(0x1E + c - '1'), false, true
	case c == '0':
		return Key(0x27), false, true
	}
	s, ok := asciiSpecials[c]
	return s.key, s.shift, ok
}
