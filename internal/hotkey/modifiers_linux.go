//go:build linux

package hotkey

import "golang.design/x/hotkey"

func modifierByName(name string) (hotkey.Modifier, bool) {
	switch name {
	case "control", "ctrl", "commandorcontrol", "cmdorctrl":
		return hotkey.ModCtrl, true
	case "shift":
		return hotkey.ModShift, true
	case "alt", "option":
		return hotkey.Mod1, true
	case "super", "meta", "win":
		return hotkey.Mod4, true
	}
	return 0, false
}
