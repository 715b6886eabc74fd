package replay

import evdev "github.com/gvalkov/golang-evdev"

// keyNames maps Linux key codes to the names the injection backend
// understands. The table is closed on purpose: a code outside it is
// skipped, never guessed.
var keyNames = map[uint16]string{
	evdev.KEY_ESC:        "esc",
	evdev.KEY_1:          "1",
	evdev.KEY_2:          "2",
	evdev.KEY_3:          "3",
	evdev.KEY_4:          "4",
	evdev.KEY_5:          "5",
	evdev.KEY_6:          "6",
	evdev.KEY_7:          "7",
	evdev.KEY_8:          "8",
	evdev.KEY_9:          "9",
	evdev.KEY_0:          "0",
	evdev.KEY_MINUS:      "-",
	evdev.KEY_EQUAL:      "=",
	evdev.KEY_BACKSPACE:  "backspace",
	evdev.KEY_TAB:        "tab",
	evdev.KEY_Q:          "q",
	evdev.KEY_W:          "w",
	evdev.KEY_E:          "e",
	evdev.KEY_R:          "r",
	evdev.KEY_T:          "t",
	evdev.KEY_Y:          "y",
	evdev.KEY_U:          "u",
	evdev.KEY_I:          "i",
	evdev.KEY_O:          "o",
	evdev.KEY_P:          "p",
	evdev.KEY_LEFTBRACE:  "[",
	evdev.KEY_RIGHTBRACE: "]",
	evdev.KEY_ENTER:      "enter",
	evdev.KEY_LEFTCTRL:   "lctrl",
	evdev.KEY_A:          "a",
	evdev.KEY_S:          "s",
	evdev.KEY_D:          "d",
	evdev.KEY_F:          "f",
	evdev.KEY_G:          "g",
	evdev.KEY_H:          "h",
	evdev.KEY_J:          "j",
	evdev.KEY_K:          "k",
	evdev.KEY_L:          "l",
	evdev.KEY_SEMICOLON:  ";",
	evdev.KEY_APOSTROPHE: "'",
	evdev.KEY_GRAVE:      "`",
	evdev.KEY_LEFTSHIFT:  "lshift",
	evdev.KEY_BACKSLASH:  "\\",
	evdev.KEY_Z:          "z",
	evdev.KEY_X:          "x",
	evdev.KEY_C:          "c",
	evdev.KEY_V:          "v",
	evdev.KEY_B:          "b",
	evdev.KEY_N:          "n",
	evdev.KEY_M:          "m",
	evdev.KEY_COMMA:      ",",
	evdev.KEY_DOT:        ".",
	evdev.KEY_SLASH:      "/",
	evdev.KEY_RIGHTSHIFT: "rshift",
	evdev.KEY_LEFTALT:    "lalt",
	evdev.KEY_SPACE:      "space",
	evdev.KEY_CAPSLOCK:   "capslock",
	evdev.KEY_F1:         "f1",
	evdev.KEY_F2:         "f2",
	evdev.KEY_F3:         "f3",
	evdev.KEY_F4:         "f4",
	evdev.KEY_F5:         "f5",
	evdev.KEY_F6:         "f6",
	evdev.KEY_F7:         "f7",
	evdev.KEY_F8:         "f8",
	evdev.KEY_F9:         "f9",
	evdev.KEY_F10:        "f10",
	evdev.KEY_F11:        "f11",
	evdev.KEY_F12:        "f12",
	evdev.KEY_RIGHTCTRL:  "rctrl",
	evdev.KEY_RIGHTALT:   "ralt",
	evdev.KEY_HOME:       "home",
	evdev.KEY_UP:         "up",
	evdev.KEY_PAGEUP:     "pageup",
	evdev.KEY_LEFT:       "left",
	evdev.KEY_RIGHT:      "right",
	evdev.KEY_END:        "end",
	evdev.KEY_DOWN:       "down",
	evdev.KEY_PAGEDOWN:   "pagedown",
	evdev.KEY_INSERT:     "insert",
	evdev.KEY_DELETE:     "delete",
	evdev.KEY_LEFTMETA:   "lcmd",
	evdev.KEY_RIGHTMETA:  "rcmd",
}
