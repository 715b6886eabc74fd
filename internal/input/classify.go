package input

import (
	"strings"

	evdev "github.com/gvalkov/golang-evdev"
)

// Capability is a flag set; a touchpad with buttons reports more than one.
type Capability uint8

const (
	CapNone     Capability = 0
	CapKeyboard Capability = 1 << iota
	CapPointerRel
	CapPointerAbs
)

func (c Capability) Has(x Capability) bool { return c&x != 0 }

func (c Capability) String() string {
	if c == CapNone {
		return "none"
	}
	parts := make([]string, 0, 3)
	if c.Has(CapKeyboard) {
		parts = append(parts, "keyboard")
	}
	if c.Has(CapPointerRel) {
		parts = append(parts, "pointer-rel")
	}
	if c.Has(CapPointerAbs) {
		parts = append(parts, "pointer-abs")
	}
	return strings.Join(parts, "+")
}

// Devices we must never capture: virtual/uinput devices in general and
// anything carrying our own product name. Grabbing the virtual device
// another softkvm instance injects through would deadlock input.
var excludeNames = []string{"virtual", "uinput", "softkvm"}

// Classify reads the capability bitmaps already queried from the device.
// Keyboard: any key bit. Pointer: X or Y axis bit, relative or absolute.
func Classify(dev *evdev.InputDevice) Capability {
	c := CapNone
	for capType, codes := range dev.Capabilities {
		switch capType.Type {
		case evdev.EV_KEY:
			if len(codes) > 0 {
				c |= CapKeyboard
			}
		case evdev.EV_REL:
			for _, code := range codes {
				if code.Code == evdev.REL_X || code.Code == evdev.REL_Y {
					c |= CapPointerRel
					break
				}
			}
		case evdev.EV_ABS:
			for _, code := range codes {
				if code.Code == evdev.ABS_X || code.Code == evdev.ABS_Y {
					c |= CapPointerAbs
					break
				}
			}
		}
	}
	return c
}

// Eligible reports whether the device may be captured: it must have some
// input capability and must not match the self-exclusion list.
func Eligible(dev *evdev.InputDevice) bool {
	if Classify(dev) == CapNone {
		return false
	}
	name := strings.ToLower(dev.Name)
	for _, excl := range excludeNames {
		if strings.Contains(name, excl) {
			return false
		}
	}
	return true
}
