package naru

// termOps is the subset of Terminal the renderer and selector drive. It
// exists so tests can substitute a fake terminal without opening a real
// tty — the Go analogue of the teacher's WithOutput/WithSize test options.
type termOps interface {
	Print(s string) error
	SGR(n int) error
	SetInvert() error
	SetNormal() error
	SetFG(color int) error
	MoveUp(n int) error
	SetCol(col int) error
	ClearLine() error
	NewLine() error
	Flush()
	MaxHeight() int
}

const (
	matchColor   = 5 // magenta
	defaultColor = 9
)

// row is one entry of the active list (either a bare candidate or a
// ranked match), as seen by the renderer.
type row struct {
	text   string
	ranges []matchRange
}

type matchRange struct {
	offset, length int
}

// renderViewport draws the visible candidate rows on the lines below the
// prompt, top to bottom, then moves the cursor back up to the prompt row
// and writes "> ". It does not
// re-print the query text; callers that need the query visible again
// (every caller except the very first draw, where the query is empty)
// follow this with a Print of the query and a Flush — see
// Selector.redraw.
func renderViewport(term termOps, active []row, selected, firstVisible, height int) error {
	visibleCount := height - 1
	if visibleCount > len(active) {
		visibleCount = len(active)
	}
	if visibleCount < 0 {
		visibleCount = 0
	}

	for i := 0; i < visibleCount; i++ {
		idx := firstVisible + i
		if err := term.NewLine(); err != nil {
			return err
		}
		if err := drawRow(term, active[idx], idx == selected); err != nil {
			return err
		}
	}

	if err := term.ClearLine(); err != nil {
		return err
	}
	if visibleCount > 0 {
		if err := term.MoveUp(visibleCount); err != nil {
			return err
		}
	}
	if err := term.SetNormal(); err != nil {
		return err
	}
	if err := term.SetCol(0); err != nil {
		return err
	}
	if err := term.Print("> "); err != nil {
		return err
	}
	return term.ClearLine()
}

// drawRow renders one candidate or match row. The selection highlight is
// spliced into any SGR sequence the candidate already begins with (rather
// than emitted as a second, independent one a trailing ESC[0m in the
// candidate's own text would immediately cancel); a query's match ranges,
// if any, are overlaid in the match color without disturbing that base
// styling.
func drawRow(term termOps, r row, selected bool) error {
	choice := r.text
	p := findLastSGRByte(choice)
	hasOwnSGR := p > 0

	if hasOwnSGR {
		if err := term.Print(choice[:p]); err != nil {
			return err
		}
		if selected {
			if err := term.Print(";7"); err != nil {
				return err
			}
		}
	} else if selected {
		if err := term.SetInvert(); err != nil {
			return err
		}
	}

	if len(r.ranges) == 0 {
		if err := term.Print(choice[p:]); err != nil {
			return err
		}
	} else if err := drawMatchedBody(term, choice, r.ranges, p, selected); err != nil {
		return err
	}

	if selected && !hasOwnSGR {
		if err := term.SetNormal(); err != nil {
			return err
		}
	}
	return nil
}

// drawMatchedBody prints choice[bodyStart:] broken into (prefix, matched,
// suffix) segments per match range, coloring each matched segment and
// restoring the surrounding attribute state — including re-applying the
// invert splice if the row is selected — around it.
func drawMatchedBody(term termOps, choice string, ranges []matchRange, bodyStart int, selected bool) error {
	cursor := bodyStart
	for _, rng := range ranges {
		if rng.offset > cursor {
			if err := term.Print(choice[cursor:rng.offset]); err != nil {
				return err
			}
		}
		if err := term.SetFG(matchColor); err != nil {
			return err
		}
		if err := term.Print(choice[rng.offset : rng.offset+rng.length]); err != nil {
			return err
		}
		if err := term.SetFG(defaultColor); err != nil {
			return err
		}
		if bodyStart > 0 {
			// Re-emit the candidate's own leading SGR run, with the invert
			// splice when selected, so its styling resumes after the match.
			restore := choice[:bodyStart]
			if selected {
				restore += ";7"
			}
			if err := term.Print(restore + "m"); err != nil {
				return err
			}
		} else if selected {
			if err := term.SetInvert(); err != nil {
				return err
			}
		}
		cursor = rng.offset + rng.length
	}
	if cursor < len(choice) {
		if err := term.Print(choice[cursor:]); err != nil {
			return err
		}
	}
	return nil
}

// findLastSGRByte scans from offset 0 while the bytes form a run of one or
// more consecutive SGR CSI sequences (ESC '[' followed by one or more
// digits/';', terminated by 'm'). It returns the offset of the 'm' of the
// last such sequence, or 0 if the input does not begin with a valid SGR
// sequence.
func findLastSGRByte(b string) int {
	pos := 0
	last := 0
	for {
		if pos+1 >= len(b) || b[pos] != 0x1b || b[pos+1] != '[' {
			break
		}
		i := pos + 2
		for i < len(b) && (b[i] == ';' || (b[i] >= '0' && b[i] <= '9')) {
			i++
		}
		if i == pos+2 || i >= len(b) || b[i] != 'm' {
			break
		}
		last = i
		pos = i + 1
	}
	return last
}
