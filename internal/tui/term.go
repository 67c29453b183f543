package tui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/amir20/dtop/internal/core"
)

// Terminal owns the tty: raw mode, the alternate screen, and frame writes.
type Terminal struct {
	fd       int
	oldState *term.State
}

// Setup switches stdin to raw mode and enters the alternate screen with the
// cursor hidden. Restore must run before the process exits or the shell is
// left unusable.
func Setup() (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	// Alternate screen, hide cursor.
	fmt.Fprint(os.Stdout, "\x1b[?1049h\x1b[?25l")
	return &Terminal{fd: fd, oldState: oldState}, nil
}

// Restore leaves the alternate screen and puts the tty back.
func (t *Terminal) Restore() {
	fmt.Fprint(os.Stdout, "\x1b[?25h\x1b[?1049l")
	if t.oldState != nil {
		term.Restore(t.fd, t.oldState)
	}
}

// Size returns the current terminal dimensions, with a sane fallback when
// the ioctl fails.
func (t *Terminal) Size() (width, height int) {
	width, height, err := term.GetSize(t.fd)
	if err != nil || width <= 0 || height <= 0 {
		return 80, 24
	}
	return width, height
}

// WriteFrame repaints the whole screen with one write: home the cursor,
// draw, then clear whatever the previous frame left below. Raw mode needs
// explicit carriage returns.
func (t *Terminal) WriteFrame(frame string) {
	frame = strings.ReplaceAll(frame, "\n", "\x1b[K\r\n")
	os.Stdout.WriteString("\x1b[H" + frame + "\x1b[J")
}

// NotifyResize forwards SIGWINCH as Resize events until ctx ends.
func NotifyResize(ctx context.Context, events chan<- core.Event) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				select {
				case events <- core.Resize{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}
