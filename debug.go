package naru

import (
	"fmt"
	"os"
	"sync"
)

// Debug tracing, gated on NARU_DEBUG, is the one ambient concern the
// specification doesn't mention but every interactive terminal program in
// this lineage carries: raw mode makes the tty unusable for println
// debugging, so a side-channel log file is the only way to see what the
// loop is doing while it runs.
var dbg = struct {
	sync.Once
	w   *os.File
	err error
}{}

func initDebug() {
	path := os.Getenv("NARU_DEBUG")
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		dbg.err = err
		return
	}
	dbg.w = f
}

func debugPrintf(format string, args ...interface{}) {
	dbg.Do(initDebug)
	if dbg.w == nil {
		return
	}
	fmt.Fprintf(dbg.w, format, args...)
}

// debugInput renders a raw input frame the way a reader of the trace file
// would want to eyeball it: ESC as "<esc>", DEL as "<del>", other control
// bytes as "Control-<letter>", and every remaining byte as the rune of the
// same value.
func debugInput(buf []byte) string {
	s := ""
	for _, b := range buf {
		switch {
		case b == 0x1b:
			s += "<esc>"
		case b == 0x7f:
			s += "<del>"
		case b < 0x20:
			s += fmt.Sprintf("Control-%c", b+0x60)
		default:
			s += string(rune(b))
		}
	}
	return s
}
