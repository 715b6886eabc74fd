// Package input owns the client-side capture pipeline: device
// classification, grab/release lifecycle, raw event readout and
// normalization into wire events.
package input

import "fmt"

type RawKind uint8

const (
	RawKey RawKind = iota + 1
	RawButton
	RawMotion
	RawScroll
)

// RawEvent is one device-level action after EV_SYN frame accumulation:
// axis deltas observed between two sync reports are merged into a single
// motion/scroll event, the way libinput-style sources present them.
type RawEvent struct {
	Kind RawKind
	Code uint16 // RawKey: key code, RawButton: button code
	// Value for RawKey/RawButton: 0=release 1=press 2=autorepeat
	Value int32
	// DX,DY for RawMotion (pixels) and RawScroll (detents, raw sign)
	DX, DY int32
}

func (e RawEvent) String() string {
	switch e.Kind {
	case RawKey:
		return fmt.Sprintf("raw-key code=%d value=%d", e.Code, e.Value)
	case RawButton:
		return fmt.Sprintf("raw-button code=0x%x value=%d", e.Code, e.Value)
	case RawMotion:
		return fmt.Sprintf("raw-motion dx=%d dy=%d", e.DX, e.DY)
	case RawScroll:
		return fmt.Sprintf("raw-scroll dx=%d dy=%d", e.DX, e.DY)
	}
	return fmt.Sprintf("raw-unknown kind=%d", e.Kind)
}
