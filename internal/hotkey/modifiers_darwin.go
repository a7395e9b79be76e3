//go:build darwin

package hotkey

import "golang.design/x/hotkey"

func modifierByName(name string) (hotkey.Modifier, bool) {
	switch name {
	case "control", "ctrl":
		return hotkey.ModCtrl, true
	case "shift":
		return hotkey.ModShift, true
	case "alt", "option":
		return hotkey.ModOption, true
	case "super", "cmd", "command", "meta", "commandorcontrol", "cmdorctrl":
		return hotkey.ModCmd, true
	}
	return 0, false
}
