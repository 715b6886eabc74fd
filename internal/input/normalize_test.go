package input_test

import (
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"

	"github.com/softkvm/softkvm/internal/input"
	"github.com/softkvm/softkvm/wire"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    input.RawEvent
		expect wire.Event // nil means dropped
	}{
		{"key-press", input.RawEvent{Kind: input.RawKey, Code: evdev.KEY_A, Value: 1}, wire.KeyPress{Key: evdev.KEY_A}},
		{"key-release", input.RawEvent{Kind: input.RawKey, Code: evdev.KEY_A, Value: 0}, wire.KeyRelease{Key: evdev.KEY_A}},
		{"key-autorepeat", input.RawEvent{Kind: input.RawKey, Code: evdev.KEY_A, Value: 2}, nil},
		{"button-left", input.RawEvent{Kind: input.RawButton, Code: evdev.BTN_LEFT, Value: 1}, wire.MouseButton{Button: 1, Pressed: true}},
		{"button-right-up", input.RawEvent{Kind: input.RawButton, Code: evdev.BTN_RIGHT, Value: 0}, wire.MouseButton{Button: 2, Pressed: false}},
		{"button-middle", input.RawEvent{Kind: input.RawButton, Code: evdev.BTN_MIDDLE, Value: 1}, wire.MouseButton{Button: 3, Pressed: true}},
		{"button-side-dropped", input.RawEvent{Kind: input.RawButton, Code: evdev.BTN_SIDE, Value: 1}, nil},
		{"button-unknown-dropped", input.RawEvent{Kind: input.RawButton, Code: 0x999, Value: 1}, nil},
		{"motion", input.RawEvent{Kind: input.RawMotion, DX: 5, DY: -3}, wire.MouseMove{X: 5, Y: -3}},
		{"motion-zero-dropped", input.RawEvent{Kind: input.RawMotion, DX: 0, DY: 0}, nil},
		{"scroll-inverts-vertical", input.RawEvent{Kind: input.RawScroll, DX: 0, DY: 2}, wire.MouseScroll{DX: 0, DY: -2}},
		{"scroll-horizontal-kept", input.RawEvent{Kind: input.RawScroll, DX: -1, DY: 0}, wire.MouseScroll{DX: -1, DY: 0}},
		{"scroll-zero-dropped", input.RawEvent{Kind: input.RawScroll, DX: 0, DY: 0}, nil},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			ev, ok := input.Normalize(c.raw)
			if c.expect == nil {
				assert.False(t, ok, "expected drop, got %v", ev)
			} else {
				assert.True(t, ok)
				assert.Equal(t, c.expect, ev)
			}
		})
	}
}

func TestParseKeyCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input  string
		expect uint16
		err    bool
	}{
		{"29", 29, false},
		{"0x1d", 0x1d, false},
		{"0X1D", 0x1d, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"banana", 0, true},
		{"70000", 0, true},
		{"-1", 0, true},
	}
	for _, c := range cases {
		c := c
		t.Run(c.input, func(t *testing.T) {
			t.Parallel()
			code, err := input.ParseKeyCode(c.input)
			if c.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, c.expect, code)
			}
		})
	}
}

func TestKeyName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Left Ctrl", input.KeyName(evdev.KEY_LEFTCTRL))
	assert.Equal(t, "unknown", input.KeyName(0x2ff))
}
