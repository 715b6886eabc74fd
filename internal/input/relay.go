package input

import (
	"sync"

	"github.com/juju/errors"

	"github.com/softkvm/softkvm/log2"
	"github.com/softkvm/softkvm/wire"
)

// RelayState is the public view of the relay toggle.
// SuppressLocal is true only while Enabled is true.
type RelayState struct {
	Enabled       bool
	SuppressLocal bool
}

// Grabber is what the relay needs from the capture layer.
type Grabber interface {
	GrabAll() error
	ReleaseAll()
}

// Relay gates the capture→transport flow. The toggle key flips the gate
// and is itself never forwarded, in either state, on either edge.
type Relay struct {
	log       *log2.Log
	toggleKey uint16
	grab      Grabber

	mu sync.RWMutex
	st RelayState
}

func NewRelay(log *log2.Log, toggleKey uint16, grab Grabber) *Relay {
	return &Relay{log: log, toggleKey: toggleKey, grab: grab}
}

func (r *Relay) State() RelayState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st
}

// Toggle flips the relay. Enabling is fail-closed: if not a single device
// could be grabbed the relay stays off, so the operator is never left with
// a keyboard that types into the remote while looking local, or vice versa.
func (r *Relay) Toggle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.Enabled {
		r.grab.ReleaseAll()
		r.st = RelayState{}
		r.log.Infof("relay disabled")
		return
	}
	if err := r.grab.GrabAll(); err != nil {
		r.log.Errorf("relay stays disabled: %s", errors.ErrorStack(err))
		return
	}
	r.st = RelayState{Enabled: true, SuppressLocal: true}
	r.log.Infof("relay enabled")
}

// Run consumes raw events until the stop channel closes. The gate is read
// per event at dispatch time, so events already buffered when the relay
// flips off are not forwarded.
func (r *Relay) Run(events <-chan RawEvent, out chan<- *wire.Packet, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind == RawKey && ev.Code == r.toggleKey {
				if ev.Value == 1 {
					r.Toggle()
				}
				continue
			}
			if !r.State().Enabled {
				continue
			}
			wev, ok := Normalize(ev)
			if !ok {
				continue
			}
			select {
			case out <- wire.New(wev):
			case <-stop:
				return
			}
		}
	}
}
