//go:build !linux

package paste

// Punctuation key codes differ per platform in keybd_event; outside Linux
// typing covers letters, digits and their shifted symbols only, and any
// other character makes Paste fall back to a clipboard copy.
var symbolKeys = map[rune]stroke{}
