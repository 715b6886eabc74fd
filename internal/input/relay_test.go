package input_test

import (
	"testing"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softkvm/softkvm/internal/input"
	"github.com/softkvm/softkvm/log2"
	"github.com/softkvm/softkvm/wire"
)

type fakeGrabber struct {
	grabErr  error
	grabs    int
	releases int
}

func (f *fakeGrabber) GrabAll() error { f.grabs++; return f.grabErr }
func (f *fakeGrabber) ReleaseAll()    { f.releases++ }

func testRelay(t testing.TB, grab *fakeGrabber) *input.Relay {
	log := log2.NewTest(t, log2.LDebug)
	return input.NewRelay(log, input.DefaultToggleKey, grab)
}

func TestRelayToggle(t *testing.T) {
	t.Parallel()

	grab := &fakeGrabber{}
	r := testRelay(t, grab)
	assert.Equal(t, input.RelayState{}, r.State())

	r.Toggle()
	assert.Equal(t, input.RelayState{Enabled: true, SuppressLocal: true}, r.State())
	assert.Equal(t, 1, grab.grabs)

	r.Toggle()
	assert.Equal(t, input.RelayState{}, r.State())
	assert.Equal(t, 1, grab.releases)
}

func TestRelayToggleFailClosed(t *testing.T) {
	t.Parallel()

	grab := &fakeGrabber{grabErr: assert.AnError}
	r := testRelay(t, grab)
	r.Toggle()
	assert.Equal(t, input.RelayState{}, r.State(), "enable must abort when grab fails")
	assert.Equal(t, 0, grab.releases)
}

// drive runs the relay over a fixed raw event sequence and returns every
// packet that came out.
func drive(t testing.TB, r *input.Relay, raws []input.RawEvent) []*wire.Packet {
	events := make(chan input.RawEvent, len(raws))
	for _, ev := range raws {
		events <- ev
	}
	close(events)
	out := make(chan *wire.Packet, len(raws))
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		r.Run(events, out, stop)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("relay.Run did not finish")
	}
	close(out)
	packets := make([]*wire.Packet, 0, len(raws))
	for p := range out {
		packets = append(packets, p)
	}
	return packets
}

func TestRelayRunDisabledForwardsNothing(t *testing.T) {
	t.Parallel()

	r := testRelay(t, &fakeGrabber{})
	packets := drive(t, r, []input.RawEvent{
		{Kind: input.RawKey, Code: evdev.KEY_A, Value: 1},
		{Kind: input.RawMotion, DX: 3, DY: 4},
		{Kind: input.RawButton, Code: evdev.BTN_LEFT, Value: 1},
	})
	assert.Empty(t, packets)
	assert.Equal(t, input.RelayState{}, r.State())
}

func TestRelayRunTogglesAndForwards(t *testing.T) {
	t.Parallel()

	r := testRelay(t, &fakeGrabber{})
	toggle := uint16(input.DefaultToggleKey)
	packets := drive(t, r, []input.RawEvent{
		{Kind: input.RawKey, Code: evdev.KEY_A, Value: 1}, // before enable: dropped
		{Kind: input.RawKey, Code: toggle, Value: 1},      // enable, swallowed
		{Kind: input.RawKey, Code: toggle, Value: 0},      // swallowed
		{Kind: input.RawKey, Code: evdev.KEY_B, Value: 1},
		{Kind: input.RawMotion, DX: 5, DY: -3},
		{Kind: input.RawKey, Code: toggle, Value: 1}, // disable, swallowed
		{Kind: input.RawKey, Code: toggle, Value: 0}, // swallowed
		{Kind: input.RawKey, Code: evdev.KEY_C, Value: 1},
	})
	require.Len(t, packets, 2)
	assert.Equal(t, wire.KeyPress{Key: evdev.KEY_B}, packets[0].Event)
	assert.Equal(t, wire.MouseMove{X: 5, Y: -3}, packets[1].Event)
	assert.Equal(t, input.RelayState{}, r.State())
}

// The toggle key never reaches the wire no matter the relay state.
func TestRelayToggleKeyNeverForwarded(t *testing.T) {
	t.Parallel()

	r := testRelay(t, &fakeGrabber{})
	toggle := uint16(input.DefaultToggleKey)
	packets := drive(t, r, []input.RawEvent{
		{Kind: input.RawKey, Code: toggle, Value: 1}, // enable
		{Kind: input.RawKey, Code: toggle, Value: 0},
		{Kind: input.RawKey, Code: toggle, Value: 2}, // autorepeat of toggle key
	})
	assert.Empty(t, packets)
	assert.True(t, r.State().Enabled)
}
