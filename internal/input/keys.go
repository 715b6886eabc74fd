package input

import (
	"strconv"
	"strings"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/juju/errors"
)

const DefaultToggleKey = uint16(evdev.KEY_LEFTCTRL)

// ParseKeyCode accepts "0x1d" hex or "29" decimal Linux key codes.
func ParseKeyCode(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Errorf("empty key code")
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, errors.Annotatef(err, "invalid key code %q", s)
	}
	return uint16(v), nil
}

// KeyName returns a human label for log lines; not part of the wire contract.
func KeyName(code uint16) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	return "unknown"
}

var keyNames = map[uint16]string{
	evdev.KEY_ESC:        "Escape",
	evdev.KEY_ENTER:      "Enter",
	evdev.KEY_SPACE:      "Space",
	evdev.KEY_TAB:        "Tab",
	evdev.KEY_BACKSPACE:  "Backspace",
	evdev.KEY_DELETE:     "Delete",
	evdev.KEY_LEFTCTRL:   "Left Ctrl",
	evdev.KEY_RIGHTCTRL:  "Right Ctrl",
	evdev.KEY_LEFTALT:    "Left Alt",
	evdev.KEY_RIGHTALT:   "Right Alt",
	evdev.KEY_LEFTSHIFT:  "Left Shift",
	evdev.KEY_RIGHTSHIFT: "Right Shift",
	evdev.KEY_LEFTMETA:   "Left Meta",
	evdev.KEY_RIGHTMETA:  "Right Meta",
	evdev.KEY_CAPSLOCK:   "Caps Lock",
	evdev.KEY_F1:         "F1",
	evdev.KEY_F2:         "F2",
	evdev.KEY_F3:         "F3",
	evdev.KEY_F4:         "F4",
	evdev.KEY_F5:         "F5",
	evdev.KEY_F6:         "F6",
	evdev.KEY_F7:         "F7",
	evdev.KEY_F8:         "F8",
	evdev.KEY_F9:         "F9",
	evdev.KEY_F10:        "F10",
	evdev.KEY_F11:        "F11",
	evdev.KEY_F12:        "F12",
}
