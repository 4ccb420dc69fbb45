package keymap

const (
	// Infinity60Rows and Infinity60Cols are the Infinity60 switch matrix.
	Infinity60Rows = 9
	Infinity60Cols = 7
)

const ____ = KcTrns

// Infinity60 returns the four-layer alphabet keymap. Keys are listed left to
// right, top to bottom, which on this board is the matrix in column-major
// order.
func Infinity60() *Keymap {
	k, err := FromLayout(Infinity60Rows, Infinity60Cols,
		// 0: default
		[]Keycode{
			Fn(0), Kc1, Kc2, Kc3, Kc4, Kc5, Kc6, Kc7, Kc8, Kc9, Kc0, KcMinus, KcEqual, KcBackspace, KcNo,
			KcTab, KcQ, KcW, KcE, KcR, KcT, KcY, KcU, KcI, KcO, KcP, KcLBracket, KcRBracket, KcBackslash,
			KcLCtrl, KcA, KcS, KcD, KcF, KcG, KcH, KcJ, KcK, KcL, KcSemicolon, KcQuote, KcEnter,
			KcLSpo, KcZ, KcX, KcC, KcV, KcB, KcN, KcM, KcComma, KcDot, KcSlash, KcRSpc, KcNo,
			KcLCtrl, MO(2), KcLAlt, LT(2, KcSpace), KcRAlt, MO(2), MO(3), KcRCtrl,
		},
		// 1: gaming
		[]Keycode{
			____, Kc1, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, KcNo,
			____, ____, KcW, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____,
			____, KcA, KcS, KcD, ____, ____, ____, ____, ____, ____, ____, ____, ____,
			KcLShift, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, KcNo,
			____, ____, ____, KcSpace, ____, ____, ____, ____,
		},
		// 2: fn
		[]Keycode{
			KcGrave, KcF1, KcF2, KcF3, KcF4, KcF5, KcF6, KcF7, KcF8, KcF9, KcF10, KcF11, KcF12, KcDelete, KcNo,
			KcCapsLock, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____,
			____, ____, ____, ____, ____, ____, KcLeft, KcDown, KcUp, KcRight, ____, ____, ____,
			____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, KcNo,
			____, ____, ____, ____, ____, ____, ____, ____,
		},
		// 3: backlight and reset
		[]Keycode{
			____, TG(1), ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, KcReset, KcNo,
			____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____, ____,
			____, ____, ____, ____, ____, ____, ____, ____, ____, Fn(1), ____, ____, ____,
			____, ____, ____, ____, ____, ____, ____, ____, Fn(2), Fn(3), ____, ____, KcNo,
			____, ____, ____, ____, ____, ____, ____, ____,
		},
	)
	if err != nil {
		panic(err)
	}
	return k
}
