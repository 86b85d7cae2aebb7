package hid

// KeyboardReportID is the report ID of the keyboard input and LED output
// reports in ReportMap.
const KeyboardReportID = 0x01

// ReportMap is the HID report descriptor served to the host: a boot-style
// keyboard with eight modifier bits, one reserved byte, six key slots and a
// five-bit LED output report.
var ReportMap = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop Ctrls)
	0x09, 0x06, // Usage (Keyboard)
	0xA1, 0x01, // Collection (Application)
	0x85, KeyboardReportID, //   Report ID (1)
	0x05, 0x07, //   Usage Page (Kbrd/Keypad)
	0x19, 0xE0, //   Usage Minimum (0xE0)
	0x29, 0xE7, //   Usage Maximum (0xE7)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x81, 0x02, //   Input (Data,Var,Abs)
	0x95, 0x01, //   Report Count (1)
	0x75, 0x08, //   Report Size (8)
	0x81, 0x01, //   Input (Const)
	0x95, 0x05, //   Report Count (5)
	0x75, 0x01, //   Report Size (1)
	0x05, 0x08, //   Usage Page (LEDs)
	0x19, 0x01, //   Usage Minimum (Num Lock)
	0x29, 0x05, //   Usage Maximum (Kana)
	0x91, 0x02, //   Output (Data,Var,Abs)
	0x95, 0x01, //   Report Count (1)
	0x75, 0x03, //   Report Size (3)
	0x91, 0x01, //   Output (Const)
	0x95, 0x06, //   Report Count (6)
	0x75, 0x08, //   Report Size (8)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x65, //   Logical Maximum (101)
	0x05, 0x07, //   Usage Page (Kbrd/Keypad)
	0x19, 0x00, //   Usage Minimum (0x00)
	0x29, 0x65, //   Usage Maximum (0x65)
	0x81, 0x00, //   Input (Data,Array,Abs)
	0xC0, // End Collection
}

// Report is the 8-byte keyboard input report.
type Report struct {
	Modifiers Modifier
	Keys      [6]Key
}

// Bytes encodes the report as sent over the Report characteristic:
// modifiers, reserved, then the six key slots.
func (r Report) Bytes() []byte {
	b := make([]byte, 8)
	b[0] = byte(r.Modifiers)
	for i, k := range r.Keys {
		b[2+i] = byte(k)
	}
	return b
}

// Empty reports whether no key or modifier is held.
func (r Report) Empty() bool {
	return r == Report{}
}

// LEDs is the host-driven output report.
type LEDs uint8

const (
	LEDNumLock LEDs = 1 << iota
	LEDCapsLock
	LEDScrollLock
	LEDCompose
	LEDKana
)
