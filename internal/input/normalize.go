package input

import (
	evdev "github.com/gvalkov/golang-evdev"

	"github.com/softkvm/softkvm/wire"
)

// Raw hardware buttons map onto a closed canonical set; everything else
// (side buttons, extra wheels) is dropped, not passed through.
var buttonCodes = map[uint16]uint8{
	evdev.BTN_LEFT:   1,
	evdev.BTN_RIGHT:  2,
	evdev.BTN_MIDDLE: 3,
}

// Normalize maps one raw event to its wire form. ok=false means the event
// is not forwarded: zero deltas, autorepeat, unsupported buttons.
func Normalize(ev RawEvent) (wire.Event, bool) {
	switch ev.Kind {
	case RawKey:
		switch ev.Value {
		case 0:
			return wire.KeyRelease{Key: ev.Code}, true
		case 1:
			return wire.KeyPress{Key: ev.Code}, true
		}
		// autorepeat, the server synthesizes its own repeats
		return nil, false

	case RawButton:
		button, ok := buttonCodes[ev.Code]
		if !ok {
			return nil, false
		}
		return wire.MouseButton{Button: button, Pressed: ev.Value != 0}, true

	case RawMotion:
		if ev.DX == 0 && ev.DY == 0 {
			return nil, false
		}
		return wire.MouseMove{X: ev.DX, Y: ev.DY}, true

	case RawScroll:
		if ev.DX == 0 && ev.DY == 0 {
			return nil, false
		}
		// wire convention: positive dy means content moves up,
		// inverse of the raw wheel sign
		return wire.MouseScroll{DX: ev.DX, DY: -ev.DY}, true
	}
	return nil, false
}
