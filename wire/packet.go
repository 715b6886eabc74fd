// Package wire defines the packet exchanged between the capture client
// and the replay server, its binary encoding and stream framing.
//
// Key and button codes use Linux input-event-code numbering on the wire,
// regardless of what either end runs on.
package wire

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Packet is the unit of transmission. ID is generated at construction and
// never reused; Timestamp is coarse seconds since epoch, informational only
// (ordering is transport-order, the clock may step backwards).
type Packet struct {
	ID        string
	Timestamp uint64

	// Exactly one of Legacy or Event is set.
	Legacy *InputEvent
	Event  Event
}

// InputEvent is the legacy raw passthrough form: Linux event type name,
// event code and value as read from the device.
type InputEvent struct {
	Type  string
	Code  uint16
	Value int32
}

// Event is the structured form, authoritative for new devices.
// The set of implementations is closed: KeyPress, KeyRelease, MouseMove,
// MouseButton, MouseScroll.
type Event interface {
	fmt.Stringer
	sealed()
}

type KeyPress struct{ Key uint16 }
type KeyRelease struct{ Key uint16 }

// MouseMove carries relative deltas.
type MouseMove struct{ X, Y int32 }

// MouseButton carries a canonical button: 1=primary 2=secondary 3=middle.
type MouseButton struct {
	Button  uint8
	Pressed bool
}

// MouseScroll is axis-normalized: positive DY means "content moves up",
// the inverse of the raw hardware vertical sign.
type MouseScroll struct{ DX, DY int32 }

func (KeyPress) sealed()    {}
func (KeyRelease) sealed()  {}
func (MouseMove) sealed()   {}
func (MouseButton) sealed() {}
func (MouseScroll) sealed() {}

func (e KeyPress) String() string   { return fmt.Sprintf("KeyPress(%d)", e.Key) }
func (e KeyRelease) String() string { return fmt.Sprintf("KeyRelease(%d)", e.Key) }
func (e MouseMove) String() string  { return fmt.Sprintf("MouseMove(%d,%d)", e.X, e.Y) }
func (e MouseButton) String() string {
	return fmt.Sprintf("MouseButton(%d,pressed=%t)", e.Button, e.Pressed)
}
func (e MouseScroll) String() string { return fmt.Sprintf("MouseScroll(%d,%d)", e.DX, e.DY) }

func New(ev Event) *Packet {
	return &Packet{
		ID:        uuid.NewString(),
		Timestamp: uint64(time.Now().Unix()),
		Event:     ev,
	}
}

func NewLegacy(eventType string, code uint16, value int32) *Packet {
	return &Packet{
		ID:        uuid.NewString(),
		Timestamp: uint64(time.Now().Unix()),
		Legacy:    &InputEvent{Type: eventType, Code: code, Value: value},
	}
}

func (p *Packet) String() string {
	switch {
	case p == nil:
		return "Packet(nil)"
	case p.Event != nil:
		return fmt.Sprintf("Packet(id=%s %s)", p.ID, p.Event.String())
	case p.Legacy != nil:
		return fmt.Sprintf("Packet(id=%s legacy type=%s code=%d value=%d)",
			p.ID, p.Legacy.Type, p.Legacy.Code, p.Legacy.Value)
	}
	return fmt.Sprintf("Packet(id=%s empty)", p.ID)
}
