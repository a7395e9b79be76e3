//go:build linux

package paste

import "github.com/micmonay/keybd_event"

// symbolKeys is the US layout for punctuation, keyed by evdev code.
var symbolKeys = map[rune]stroke{
	'.':  {code: keybd_event.VK_DOT},
	'>':  {code: keybd_event.VK_DOT, shift: true},
	',':  {code: keybd_event.VK_COMMA},
	'<':  {code: keybd_event.VK_COMMA, shift: true},
	'\'': {code: keybd_event.VK_APOSTROPHE},
	'"':  {code: keybd_event.VK_APOSTROPHE, shift: true},
	'/':  {code: keybd_event.VK_SLASH},
	'?':  {code: keybd_event.VK_SLASH, shift: true},
	'-':  {code: keybd_event.VK_MINUS},
	'_':  {code: keybd_event.VK_MINUS, shift: true},
	'=':  {code: keybd_event.VK_EQUAL},
	'+':  {code: keybd_event.VK_EQUAL, shift: true},
	';':  {code: keybd_event.VK_SEMICOLON},
	':':  {code: keybd_event.VK_SEMICOLON, shift: true},
	'[':  {code: keybd_event.VK_LEFTBRACE},
	'{':  {code: keybd_event.VK_LEFTBRACE, shift: true},
	']':  {code: keybd_event.VK_RIGHTBRACE},
	'}':  {code: keybd_event.VK_RIGHTBRACE, shift: true},
	'\\': {code: keybd_event.VK_BACKSLASH},
	'|':  {code: keybd_event.VK_BACKSLASH, shift: true},
	'`':  {code: keybd_event.VK_GRAVE},
	'~':  {code: keybd_event.VK_GRAVE, shift: true},
	'\n': {code: keybd_event.VK_ENTER},
	'\t': {code: keybd_event.VK_TAB},
}
