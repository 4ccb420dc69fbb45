package keymap

// HID keyboard usage codes.
const (
	KcA Keycode = 0x04 + iota
	KcB
	KcC
	KcD
	KcE
	KcF
	KcG
	KcH
	KcI
	KcJ
	KcK
	KcL
	KcM
	KcN
	KcO
	KcP
	KcQ
	KcR
	KcS
	KcT
	KcU
	KcV
	KcW
	KcX
	KcY
	KcZ
	Kc1
	Kc2
	Kc3
	Kc4
	Kc5
	Kc6
	Kc7
	Kc8
	Kc9
	Kc0
	KcEnter
	KcEscape
	KcBackspace
	KcTab
	KcSpace
	KcMinus
	KcEqual
	KcLBracket
	KcRBracket
	KcBackslash
	KcNonUSHash
	KcSemicolon
	KcQuote
	KcGrave
	KcComma
	KcDot
	KcSlash
	KcCapsLock
	KcF1
	KcF2
	KcF3
	KcF4
	KcF5
	KcF6
	KcF7
	KcF8
	KcF9
	KcF10
	KcF11
	KcF12
)

const (
	KcDelete Keycode = 0x4C
	KcRight  Keycode = 0x4F
	KcLeft   Keycode = 0x50
	KcDown   Keycode = 0x51
	KcUp     Keycode = 0x52

	KcLCtrl  Keycode = 0xE0
	KcLShift Keycode = 0xE1
	KcLAlt   Keycode = 0xE2
	KcLGui   Keycode = 0xE3
	KcRCtrl  Keycode = 0xE4
	KcRShift Keycode = 0xE5
	KcRAlt   Keycode = 0xE6
)

// Action codes. Their values only need to be distinct from the HID range;
// nothing here interprets them.
const (
	KcReset Keycode = 0x5C00
	// KcLSpo and KcRSpc are shift keys that send parentheses when tapped.
	KcLSpo Keycode = 0x5CD7
	KcRSpc Keycode = 0x5CD8
)

// Fn is the n-th entry of the firmware's function action table.
func Fn(n uint8) Keycode { return 0x2000 | Keycode(n) }

// MO activates layer while held.
func MO(layer uint8) Keycode { return 0x5100 | Keycode(layer) }

// TG toggles layer.
func TG(layer uint8) Keycode { return 0x5300 | Keycode(layer) }

// LT activates layer while held and sends code when tapped.
func LT(layer uint8, code Keycode) Keycode {
	return 0x4000 | Keycode(layer&0x0F)<<8 | code&0xFF
}
