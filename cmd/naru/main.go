// Command naru is an interactive fuzzy line filter: it reads candidate
// lines from stdin, lets the user narrow and navigate them on the
// controlling terminal, and prints the chosen line to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/insidewhy/naru"
	"github.com/insidewhy/naru/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	candidates, err := naru.ReadCandidates(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	term, err := naru.OpenTerminal("/dev/tty")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	choice, runErr := "", term.SetNoWrap()
	if runErr == nil {
		choice, runErr = runSelector(term, candidates, cfg)
	}

	// Guaranteed release, §7: re-enable the wrap SetNoWrap disabled above,
	// home the cursor, clear the line, drop any lingering SGR state, then
	// hand the tty back — in that order, and attempted in full even if an
	// earlier step (including SetNoWrap itself) failed.
	_ = term.SetWrap()
	_ = term.SetCol(0)
	_ = term.ClearLine()
	_ = term.SetNormal()
	term.Flush()
	term.Reset()

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		return 1
	}

	fmt.Println(choice)
	return 0
}

func runSelector(term *naru.Terminal, candidates []string, cfg *config.Config) (string, error) {
	sel, err := naru.NewSelector(term, candidates, cfg)
	if err != nil {
		return "", err
	}
	return sel.Run()
}
