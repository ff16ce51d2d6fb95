//go:build linux || darwin

package naru

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// defaultTTYPath is the controlling terminal device naru attaches to. It is
// never stdin or stdout, so the terminal UI never interferes with a shell
// pipeline's data stream.
const defaultTTYPath = "/dev/tty"

const outputBufferSize = 4096

// Terminal owns the controlling-tty file descriptors, the saved line
// discipline, and buffered ANSI output. A Terminal obtained from
// OpenTerminal must be released exactly once via Reset.
type Terminal struct {
	fdIn  int
	fOut  *os.File
	out   *bufio.Writer
	winch chan os.Signal

	original unix.Termios

	fgColor int

	maxWidth  int
	maxHeight int

	reset bool
}

// OpenTerminal opens path (the controlling tty) for reading and writing,
// switches it to a raw-ish line discipline, queries its size, and arms
// SIGWINCH so that a blocked read can be interrupted by a resize. Any
// failure leaves no resources open and the returned error describes the
// acquisition step that failed.
func OpenTerminal(path string) (*Terminal, error) {
	fdIn, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("naru: open %s for reading: %w", path, err)
	}

	fOut, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		_ = unix.Close(fdIn)
		return nil, fmt.Errorf("naru: open %s for writing: %w", path, err)
	}

	original, err := unix.IoctlGetTermios(fdIn, ioctlGetTermios)
	if err != nil {
		_ = unix.Close(fdIn)
		_ = fOut.Close()
		return nil, fmt.Errorf("naru: capture line discipline: %w", err)
	}

	raw := *original
	raw.Iflag &^= unix.ICRNL
	raw.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	if err := unix.IoctlSetTermios(fdIn, ioctlSetTermios, &raw); err != nil {
		_ = unix.Close(fdIn)
		_ = fOut.Close()
		return nil, fmt.Errorf("naru: set line discipline: %w", err)
	}

	ws, err := unix.IoctlGetWinsize(int(fOut.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		_ = unix.IoctlSetTermios(fdIn, ioctlSetTermios, original)
		_ = unix.Close(fdIn)
		_ = fOut.Close()
		return nil, fmt.Errorf("naru: get window size: %w", err)
	}

	// Registering interest in SIGWINCH is what keeps the kernel from
	// leaving it at its default (ignored) disposition. With a listener
	// registered, delivery of the signal interrupts the blocking pselect
	// in InputReader.Read with EINTR, which is all naru needs from it; no
	// code ever runs "in" the signal handler itself.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)

	t := &Terminal{
		fdIn:      fdIn,
		fOut:      fOut,
		out:       bufio.NewWriterSize(fOut, outputBufferSize),
		winch:     winch,
		original:  *original,
		fgColor:   9,
		maxWidth:  int(ws.Col),
		maxHeight: int(ws.Row),
	}
	return t, nil
}

// MaxWidth returns the terminal's column count as of acquisition (or the
// last RefreshSize call).
func (t *Terminal) MaxWidth() int { return t.maxWidth }

// MaxHeight returns the terminal's row count as of acquisition (or the
// last RefreshSize call).
func (t *Terminal) MaxHeight() int { return t.maxHeight }

// RefreshSize re-queries the window size. Redrawing after a SIGWINCH is
// specified as optional but recommended; callers that want the viewport to
// track a live resize call this before redrawing.
func (t *Terminal) RefreshSize() error {
	ws, err := unix.IoctlGetWinsize(int(t.fOut.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return fmt.Errorf("naru: get window size: %w", err)
	}
	t.maxWidth = int(ws.Col)
	t.maxHeight = int(ws.Row)
	return nil
}

// GetReader returns an InputReader borrowing this Terminal's read
// descriptor. The Terminal must outlive the reader.
func (t *Terminal) GetReader() *InputReader {
	return &InputReader{fd: t.fdIn}
}

func (t *Terminal) writeString(s string) error {
	_, err := t.out.WriteString(s)
	if err != nil {
		return fmt.Errorf("naru: write to terminal: %w", err)
	}
	return nil
}

// SGR emits a raw Select Graphic Rendition escape sequence.
func (t *Terminal) SGR(n int) error {
	return t.writeString("\x1b[" + strconv.Itoa(n) + "m")
}

// SetInvert enables reverse video.
func (t *Terminal) SetInvert() error {
	return t.SGR(7)
}

// SetNormal resets all attributes and the foreground-color shadow.
func (t *Terminal) SetNormal() error {
	if err := t.SGR(0); err != nil {
		return err
	}
	t.fgColor = 9
	return nil
}

// SetFG sets the foreground color, suppressing the write if it already
// matches the shadowed color.
func (t *Terminal) SetFG(color int) error {
	if t.fgColor == color {
		return nil
	}
	if err := t.SGR(30 + color); err != nil {
		return err
	}
	t.fgColor = color
	return nil
}

// MoveUp moves the cursor up n rows.
func (t *Terminal) MoveUp(n int) error {
	return t.writeString("\x1b[" + strconv.Itoa(n) + "A")
}

// SetCol moves the cursor to the 0-based column col.
func (t *Terminal) SetCol(col int) error {
	return t.writeString("\x1b[" + strconv.Itoa(col+1) + "G")
}

// ClearLine erases from the cursor to the end of the line.
func (t *Terminal) ClearLine() error {
	return t.writeString("\x1b[K")
}

// NewLine erases to end of line and moves to the next row.
func (t *Terminal) NewLine() error {
	return t.writeString("\x1b[K\n")
}

// SetNoWrap disables terminal auto-wrap (DECAWM off).
func (t *Terminal) SetNoWrap() error {
	return t.writeString("\x1b[?7l")
}

// SetWrap re-enables terminal auto-wrap (DECAWM on).
func (t *Terminal) SetWrap() error {
	return t.writeString("\x1b[?7h")
}

// Print writes s verbatim.
func (t *Terminal) Print(s string) error {
	return t.writeString(s)
}

// Flush drains the output buffer to the tty. Best-effort: callers on an
// error-unwind path don't have a better recourse than to keep going.
func (t *Terminal) Flush() {
	_ = t.out.Flush()
}

// Reset restores the pre-acquisition line discipline and releases both
// descriptors. It must be called exactly once. Restoring the line
// discipline is attempted even if flushing or closing the output stream
// failed, since leaving the user's shell in raw mode is worse than leaking
// a descriptor.
func (t *Terminal) Reset() {
	if t.reset {
		return
	}
	t.reset = true

	signal.Stop(t.winch)
	close(t.winch)

	_ = t.out.Flush()
	_ = t.fOut.Close()

	_ = unix.IoctlSetTermios(t.fdIn, ioctlSetTermios, &t.original)
	_ = unix.Close(t.fdIn)
}
