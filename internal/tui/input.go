package tui

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync/atomic"
	"unicode/utf8"

	"github.com/amir20/dtop/internal/core"
)

// key is one decoded keypress.
type key struct {
	r       rune
	special specialKey
}

type specialKey int

const (
	keyRune specialKey = iota
	keyUp
	keyDown
	keyEnter
	keyEsc
	keyBackspace
	keyPageUp
	keyPageDown
	keyCtrlC
)

// Keyboard reads the tty and broadcasts intent events. It knows nothing
// about the current view: each keypress emits every intent that key could
// mean, and the state machine applies whichever fits the active view.
//
// The one exception is text mode, flipped by the state machine while the
// search bar is open, where plain characters become search input instead of
// intents.
type Keyboard struct {
	events    chan<- core.Event
	in        io.Reader
	textInput atomic.Bool
}

func NewKeyboard(events chan<- core.Event) *Keyboard {
	return &Keyboard{events: events, in: os.Stdin}
}

// SetTextInput switches between intent mode and search text mode. Safe to
// call from the consumer loop while the reader goroutine runs.
func (k *Keyboard) SetTextInput(active bool) {
	k.textInput.Store(active)
}

// Run reads keys until the input closes or ctx ends. Meant to run on its
// own goroutine.
func (k *Keyboard) Run(ctx context.Context) {
	r := bufio.NewReader(k.in)
	for {
		if ctx.Err() != nil {
			return
		}
		kk, err := readKey(r)
		if err != nil {
			return
		}
		for _, ev := range k.translate(kk) {
			select {
			case k.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// readKey decodes one keypress, folding ANSI escape sequences into special
// keys. A lone ESC with nothing buffered behind it is the escape key;
// terminals deliver real sequences in a single write.
func readKey(r *bufio.Reader) (key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return key{}, err
	}

	switch b {
	case 0x03:
		return key{special: keyCtrlC}, nil
	case '\r', '\n':
		return key{special: keyEnter}, nil
	case 0x7f, 0x08:
		return key{special: keyBackspace}, nil
	case 0x1b:
		if r.Buffered() == 0 {
			return key{special: keyEsc}, nil
		}
		next, err := r.ReadByte()
		if err != nil {
			return key{}, err
		}
		if next != '[' && next != 'O' {
			r.UnreadByte()
			return key{special: keyEsc}, nil
		}
		return readCSI(r)
	}

	if b < 0x80 {
		return key{r: rune(b)}, nil
	}
	// Multi-byte UTF-8: collect the remaining bytes of the rune.
	buf := []byte{b}
	for !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
		nb, err := r.ReadByte()
		if err != nil {
			return key{}, err
		}
		buf = append(buf, nb)
	}
	ru, _ := utf8.DecodeRune(buf)
	return key{r: ru}, nil
}

// readCSI consumes the remainder of an ESC [ sequence.
func readCSI(r *bufio.Reader) (key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return key{}, err
	}
	switch b {
	case 'A':
		return key{special: keyUp}, nil
	case 'B':
		return key{special: keyDown}, nil
	case '5', '6':
		// Expect a trailing '~'.
		if t, err := r.ReadByte(); err == nil && t != '~' {
			r.UnreadByte()
		}
		if b == '5' {
			return key{special: keyPageUp}, nil
		}
		return key{special: keyPageDown}, nil
	default:
		// Consume until the final byte of an unrecognized sequence.
		for b >= 0x30 && b <= 0x3f {
			if b, err = r.ReadByte(); err != nil {
				return key{}, err
			}
		}
		return key{special: keyEsc, r: 0}, nil
	}
}

// translate maps a key to the intents it broadcasts.
func (k *Keyboard) translate(kk key) []core.Event {
	if kk.special == keyCtrlC {
		return []core.Event{core.Quit{}}
	}

	if k.textInput.Load() {
		switch kk.special {
		case keyEnter:
			return []core.Event{core.EnterPressed{}}
		case keyEsc:
			return []core.Event{core.ExitView{}}
		case keyBackspace:
			return []core.Event{core.SearchKeyEvent{Backspace: true}}
		case keyRune:
			if kk.r >= ' ' {
				return []core.Event{core.SearchKeyEvent{Rune: kk.r}}
			}
		}
		return nil
	}

	switch kk.special {
	case keyUp:
		return []core.Event{core.SelectPrevious{}, core.ScrollUp{}, core.SelectActionUp{}}
	case keyDown:
		return []core.Event{core.SelectNext{}, core.ScrollDown{}, core.SelectActionDown{}}
	case keyEnter:
		// EnterPressed first: it is a no-op in the action menu, where
		// ExecuteAction then fires; in the list it opens the log view and
		// ExecuteAction is the no-op.
		return []core.Event{core.EnterPressed{}, core.ExecuteAction{}}
	case keyEsc:
		return []core.Event{core.ExitView{}}
	case keyPageUp:
		return []core.Event{core.ScrollPageUp{}}
	case keyPageDown:
		return []core.Event{core.ScrollPageDown{}}
	case keyRune:
	default:
		return nil
	}

	switch kk.r {
	case 'q':
		return []core.Event{core.Quit{}}
	case 'k':
		return []core.Event{core.SelectPrevious{}, core.ScrollUp{}, core.SelectActionUp{}}
	case 'j':
		return []core.Event{core.SelectNext{}, core.ScrollDown{}, core.SelectActionDown{}}
	case 'g':
		return []core.Event{core.ScrollToTop{}}
	case 'G':
		return []core.Event{core.ScrollToBottom{}}
	case '/':
		return []core.Event{core.EnterSearchMode{}}
	case 'x':
		return []core.Event{core.ShowActionMenu{}}
	case 's':
		return []core.Event{core.CycleSortField{}}
	case 'u':
		return []core.Event{core.SetSortField{Field: core.SortUptime}}
	case 'n':
		return []core.Event{core.SetSortField{Field: core.SortName}}
	case 'c':
		return []core.Event{core.SetSortField{Field: core.SortCPU}}
	case 'm':
		return []core.Event{core.SetSortField{Field: core.SortMemory}}
	case 'a':
		return []core.Event{core.ToggleShowAll{}}
	case 'h':
		return []core.Event{core.CycleHostFilter{}}
	case 'o':
		return []core.Event{core.OpenExternalViewer{}}
	case '?':
		return []core.Event{core.ToggleHelp{}}
	}
	return nil
}
