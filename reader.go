//go:build linux || darwin

package naru

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// InputReader is a lightweight handle, borrowed from a Terminal, that
// performs one interruptible read per call to Read.
type InputReader struct {
	fd int
}

// Read performs a single iteration of: wait for the read descriptor to
// become ready via pselect (with an empty signal mask, so any pending
// signal interrupts the wait), then read up to 4 bytes.
//
// The returned array is always 5 bytes: the first up to 4 hold whatever was
// read, and the 5th is always zero, guaranteeing the result can be treated
// as a NUL-terminated byte string. If pselect was interrupted by a signal
// rather than by input becoming ready, the returned array is all zeros;
// callers distinguish this "signal" case by checking buf[0] == 0. A
// 0-length read is EOF and is reported as an error instead; a typed NUL
// byte (such as Ctrl-@) also leaves buf[0] == 0 and so reads as a signal.
func (r *InputReader) Read() ([5]byte, error) {
	var buf [5]byte

	var readFDs unix.FdSet
	fdSet(&readFDs, r.fd)

	var sigmask unix.Sigset_t
	n, err := unix.Pselect(r.fd+1, &readFDs, nil, nil, nil, &sigmask)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return buf, nil
		}
		return buf, fmt.Errorf("naru: could not read from terminal: %w", err)
	}
	if n <= 0 {
		return buf, nil
	}

	nread, err := unix.Read(r.fd, buf[:4])
	if err != nil {
		return buf, fmt.Errorf("naru: could not read from terminal: %w", err)
	}
	if nread == 0 {
		return buf, fmt.Errorf("naru: %w", errEndOfInput)
	}
	return buf, nil
}

var errEndOfInput = errors.New("end of input on controlling terminal")
