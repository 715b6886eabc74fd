// Package replay turns received wire packets back into host input through
// a synthetic input backend.
package replay

import (
	"sync"

	"github.com/juju/errors"

	"github.com/softkvm/softkvm/helpers"
	"github.com/softkvm/softkvm/log2"
	"github.com/softkvm/softkvm/wire"
)

// Injector is the synthetic input backend. Directions are "down"/"up",
// buttons are "left"/"center"/"right".
type Injector interface {
	KeyToggle(key, direction string) error
	ButtonToggle(button, direction string) error
	MoveRelative(dx, dy int)
	Scroll(dx, dy int)
}

var buttonNames = map[uint8]string{
	1: "left",
	2: "right",
	3: "center",
}

// Sink serializes all injection through one mutex. The backend talks to a
// single global display session; interleaving two clients' half-applied
// events corrupts modifier state.
type Sink struct {
	mu  sync.Mutex
	log *log2.Log
	inj Injector
}

func NewSink(log *log2.Log, inj Injector) *Sink {
	return &Sink{log: log, inj: inj}
}

// Apply injects one packet into the host session. Unmappable events are
// skipped with a debug log and are not errors: a client with a richer
// keyboard must not be able to wedge the connection.
func (s *Sink) Apply(p *wire.Packet) error {
	return helpers.WithLockError(&s.mu, func() error {
		if p.Event != nil {
			return s.applyEvent(p.Event)
		}
		if p.Legacy != nil {
			return s.applyLegacy(p.Legacy)
		}
		s.log.Debugf("replay skip empty packet id=%s", p.ID)
		return nil
	})
}

func (s *Sink) applyEvent(ev wire.Event) error {
	switch e := ev.(type) {
	case wire.KeyPress:
		return s.key(e.Key, "down")
	case wire.KeyRelease:
		return s.key(e.Key, "up")
	case wire.MouseMove:
		s.inj.MoveRelative(int(e.X), int(e.Y))
		return nil
	case wire.MouseButton:
		name, ok := buttonNames[e.Button]
		if !ok {
			s.log.Debugf("replay skip button=%d", e.Button)
			return nil
		}
		direction := "up"
		if e.Pressed {
			direction = "down"
		}
		return errors.Annotatef(s.inj.ButtonToggle(name, direction), "button %s %s", name, direction)
	case wire.MouseScroll:
		s.inj.Scroll(int(e.DX), int(e.DY))
		return nil
	}
	s.log.Debugf("replay skip event %s", ev)
	return nil
}

func (s *Sink) key(code uint16, direction string) error {
	name, ok := keyNames[code]
	if !ok {
		s.log.Debugf("replay skip key code=%d", code)
		return nil
	}
	return errors.Annotatef(s.inj.KeyToggle(name, direction), "key %s %s", name, direction)
}

// applyLegacy handles the untyped compatibility encoding: raw event
// type/code/value triples straight off the device.
func (s *Sink) applyLegacy(ev *wire.InputEvent) error {
	switch ev.Type {
	case "EV_KEY":
		switch ev.Value {
		case 0:
			return s.key(ev.Code, "up")
		case 1:
			return s.key(ev.Code, "down")
		}
		return nil
	case "EV_REL":
		switch ev.Code {
		case 0: // REL_X
			s.inj.MoveRelative(int(ev.Value), 0)
		case 1: // REL_Y
			s.inj.MoveRelative(0, int(ev.Value))
		case 6: // REL_HWHEEL
			s.inj.Scroll(int(ev.Value), 0)
		case 8: // REL_WHEEL, wire scroll sign is inverse of the raw wheel
			s.inj.Scroll(0, -int(ev.Value))
		default:
			s.log.Debugf("replay skip rel code=%d", ev.Code)
		}
		return nil
	case "EV_ABS":
		s.log.Debugf("replay skip abs code=%d value=%d", ev.Code, ev.Value)
		return nil
	case "PING":
		s.log.Infof("ping")
		return nil
	}
	s.log.Debugf("replay skip legacy type=%s", ev.Type)
	return nil
}
