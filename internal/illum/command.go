package illum

import "fmt"

// Command is one state change for the worker. The set of variants is closed.
type Command interface {
	fmt.Stringer
	command()
}

// Enable lights a single LED in the layer buffer.
type Enable struct{ LED uint8 }

// Disable darkens a single LED in the layer buffer.
type Disable struct{ LED uint8 }

// Lock shows an LED in the overlay at full intensity and makes it blink.
type Lock struct{ LED uint8 }

// Unlock clears an overlay LED and its blink bit.
type Unlock struct{ LED uint8 }

// SetLayer rebuilds the layer buffer from a keymap layer.
type SetLayer struct{ Layer uint8 }

// SetBacklight sets the raw backlight intensity (0..255).
type SetBacklight struct{ Raw uint8 }

func (Enable) command()       {}
func (Disable) command()      {}
func (Lock) command()         {}
func (Unlock) command()       {}
func (SetLayer) command()     {}
func (SetBacklight) command() {}

func (c Enable) String() string       { return fmt.Sprintf("enable(%d)", c.LED) }
func (c Disable) String() string      { return fmt.Sprintf("disable(%d)", c.LED) }
func (c Lock) String() string         { return fmt.Sprintf("lock(%d)", c.LED) }
func (c Unlock) String() string       { return fmt.Sprintf("unlock(%d)", c.LED) }
func (c SetLayer) String() string     { return fmt.Sprintf("set_layer(%d)", c.Layer) }
func (c SetBacklight) String() string { return fmt.Sprintf("set_backlight(%d)", c.Raw) }
