package paste

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/micmonay/keybd_event"
)

// keystrokeGap spaces synthesised keys so slow input stacks keep up.
const keystrokeGap = 5 * time.Millisecond

type stroke struct {
	code  int
	shift bool
}

// keybdKeyboard sends key events through keybd_event. The virtual device is
// created on first use.
type keybdKeyboard struct {
	once sync.Once
	kb   keybd_event.KeyBonding
	err  error
	mu   sync.Mutex
}

func newKeybdKeyboard() *keybdKeyboard {
	return &keybdKeyboard{}
}

func (k *keybdKeyboard) bonding() (*keybd_event.KeyBonding, error) {
	k.once.Do(func() {
		k.kb, k.err = keybd_event.NewKeyBonding()
		if k.err != nil {
			k.err = errors.Wrap(k.err, "create virtual keyboard")
		}
	})
	return &k.kb, k.err
}

func (k *keybdKeyboard) PasteChord() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	kb, err := k.bonding()
	if err != nil {
		return err
	}
	kb.Clear()
	kb.SetKeys(keybd_event.VK_V)
	setPasteModifier(kb)
	return kb.Launching()
}

// Type validates every character before sending anything, so an unsupported
// character fails the call with nothing typed.
func (k *keybdKeyboard) Type(text string) error {
	strokes, err := planStrokes(text)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	kb, err := k.bonding()
	if err != nil {
		return err
	}
	for _, s := range strokes {
		kb.Clear()
		kb.SetKeys(s.code)
		kb.HasSHIFT(s.shift)
		if err := kb.Launching(); err != nil {
			return errors.Wrap(err, "send keystroke")
		}
		time.Sleep(keystrokeGap)
	}
	return nil
}

var letterKeys = []int{
	keybd_event.VK_A, keybd_event.VK_B, keybd_event.VK_C, keybd_event.VK_D, keybd_event.VK_E,
	keybd_event.VK_F, keybd_event.VK_G, keybd_event.VK_H, keybd_event.VK_I, keybd_event.VK_J,
	keybd_event.VK_K, keybd_event.VK_L, keybd_event.VK_M, keybd_event.VK_N, keybd_event.VK_O,
	keybd_event.VK_P, keybd_event.VK_Q, keybd_event.VK_R, keybd_event.VK_S, keybd_event.VK_T,
	keybd_event.VK_U, keybd_event.VK_V, keybd_event.VK_W, keybd_event.VK_X, keybd_event.VK_Y,
	keybd_event.VK_Z,
}

var digitKeys = []int{
	keybd_event.VK_0, keybd_event.VK_1, keybd_event.VK_2, keybd_event.VK_3, keybd_event.VK_4,
	keybd_event.VK_5, keybd_event.VK_6, keybd_event.VK_7, keybd_event.VK_8, keybd_event.VK_9,
}

// shiftedDigits maps the US layout symbols that share a key with a digit.
var shiftedDigits = map[rune]int{
	')': 0, '!': 1, '@': 2, '#': 3, '$': 4, '%': 5, '^': 6, '&': 7, '*': 8, '(': 9,
}

// typographic folds punctuation that cleanup models like to emit into keys
// a plain layout can reach.
var typographic = map[rune]string{
	'\u2018': "'", '\u2019': "'", '\u201c': `"`, '\u201d': `"`,
	'\u2013': "-", '\u2014': "-", '\u2026': "...", '\u00a0': " ",
}

func planStrokes(text string) ([]stroke, error) {
	strokes := make([]stroke, 0, len(text))
	for i, r := range text {
		chars := []rune{r}
		if folded, ok := typographic[r]; ok {
			chars = []rune(folded)
		}
		for _, c := range chars {
			s, ok := strokeFor(c)
			if !ok {
				return nil, errors.Newf("no key mapping for %q at offset %d", r, i)
			}
			strokes = append(strokes, s)
		}
	}
	return strokes, nil
}

func strokeFor(r rune) (stroke, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return stroke{code: letterKeys[r-'a']}, true
	case r >= 'A' && r <= 'Z':
		return stroke{code: letterKeys[r-'A'], shift: true}, true
	case r >= '0' && r <= '9':
		return stroke{code: digitKeys[r-'0']}, true
	case r == ' ':
		return stroke{code: keybd_event.VK_SPACE}, true
	}
	if d, ok := shiftedDigits[r]; ok {
		return stroke{code: digitKeys[d], shift: true}, true
	}
	s, ok := symbolKeys[r]
	return s, ok
}
