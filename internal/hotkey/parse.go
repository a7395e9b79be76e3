// Package hotkey registers the global toggle shortcut.
package hotkey

import (
	"strings"

	"github.com/cockroachdb/errors"
	"golang.design/x/hotkey"
)

// Binding is a parsed accelerator such as "Control+Shift+Space".
type Binding struct {
	Accelerator string
	Mods        []hotkey.Modifier
	Key         hotkey.Key
}

var namedKeys = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"return": hotkey.KeyReturn,
	"enter":  hotkey.KeyReturn,
	"escape": hotkey.KeyEscape,
	"esc":    hotkey.KeyEscape,
	"tab":    hotkey.KeyTab,
	"f1":     hotkey.KeyF1,
	"f2":     hotkey.KeyF2,
	"f3":     hotkey.KeyF3,
	"f4":     hotkey.KeyF4,
	"f5":     hotkey.KeyF5,
	"f6":     hotkey.KeyF6,
	"f7":     hotkey.KeyF7,
	"f8":     hotkey.KeyF8,
	"f9":     hotkey.KeyF9,
	"f10":    hotkey.KeyF10,
	"f11":    hotkey.KeyF11,
	"f12":    hotkey.KeyF12,
}

var letterKeys = []hotkey.Key{
	hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE, hotkey.KeyF, hotkey.KeyG,
	hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ, hotkey.KeyK, hotkey.KeyL, hotkey.KeyM, hotkey.KeyN,
	hotkey.KeyO, hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR, hotkey.KeyS, hotkey.KeyT, hotkey.KeyU,
	hotkey.KeyV, hotkey.KeyW, hotkey.KeyX, hotkey.KeyY, hotkey.KeyZ,
}

var digitKeys = []hotkey.Key{
	hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
	hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
}

// Parse reads a "+"-separated accelerator. The last part is the key; the
// others are modifiers. At least one modifier is required so a plain key is
// never grabbed system-wide.
func Parse(accelerator string) (Binding, error) {
	parts := strings.Split(accelerator, "+")
	if len(parts) < 2 {
		return Binding{}, errors.Newf("hotkey %q needs at least one modifier and a key", accelerator)
	}

	binding := Binding{Accelerator: accelerator}
	seen := make(map[hotkey.Modifier]bool)
	for _, raw := range parts[:len(parts)-1] {
		name := strings.ToLower(strings.TrimSpace(raw))
		mod, ok := modifierByName(name)
		if !ok {
			return Binding{}, errors.Newf("unknown modifier %q in hotkey %q", raw, accelerator)
		}
		if !seen[mod] {
			seen[mod] = true
			binding.Mods = append(binding.Mods, mod)
		}
	}

	key, err := parseKey(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return Binding{}, errors.Wrapf(err, "hotkey %q", accelerator)
	}
	binding.Key = key
	return binding, nil
}

func parseKey(name string) (hotkey.Key, error) {
	lower := strings.ToLower(name)
	if key, ok := namedKeys[lower]; ok {
		return key, nil
	}
	if len(lower) == 1 {
		switch c := lower[0]; {
		case c >= 'a' && c <= 'z':
			return letterKeys[c-'a'], nil
		case c >= '0' && c <= '9':
			return digitKeys[c-'0'], nil
		}
	}
	return 0, errors.Newf("unsupported key %q", name)
}
