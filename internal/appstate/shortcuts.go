package appstate

import (
	"unicode"

	"golang.org/x/mobile/event/key"
)

// KeyShortcut is a key combination bound to an editor action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

type keymap struct {
	actions map[string]func() bool
	keys    map[KeyShortcut]string
}

func newKeymap() *keymap {
	return &keymap{actions: map[string]func() bool{}, keys: map[KeyShortcut]string{}}
}

// register binds fn to name and to each of the shortcuts. fn reports whether
// the window needs repainting.
func (k *keymap) register(name string, keys KeyboardShortcuts, fn func() bool) {
	k.actions[name] = fn
	if keys != nil {
		for _, sc := range keys.KeyboardShortcuts() {
			k.keys[sc] = name
		}
	}
}

// lookup finds the action for a key press. Shortcuts are registered either
// by rune, matched case insensitively, or by key code. Shift is ignored for
// runes since it is already reflected in the rune itself.
func (k *keymap) lookup(e key.Event) (string, bool) {
	if e.Rune > 0 {
		r := unicode.ToLower(e.Rune)
		if name, ok := k.keys[KeyShortcut{Rune: r, Modifiers: e.Modifiers}]; ok {
			return name, true
		}
		if name, ok := k.keys[KeyShortcut{Rune: r, Modifiers: e.Modifiers &^ key.ModShift}]; ok {
			return name, true
		}
	}
	name, ok := k.keys[KeyShortcut{Code: e.Code, Modifiers: e.Modifiers}]
	return name, ok
}
