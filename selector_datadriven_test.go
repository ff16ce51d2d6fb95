package naru

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/mattn/go-runewidth"
)

// termGrid is a fixed-size rune buffer standing in for a real terminal,
// in the same spirit as the teacher's mockTerm: every termOps call updates
// a cursor position and a small attribute grid instead of writing ANSI
// bytes to a pty. Width accounting goes through go-runewidth so a
// multi-column candidate (a CJK line, say) advances the cursor correctly.
type termGrid struct {
	width, height int
	cells         [][]rune
	invert        []bool
	fg            []int
	col, row      int
	curInvert     bool
	curFG         int
}

func newTermGrid(width, height int) *termGrid {
	g := &termGrid{
		width:  width,
		height: height,
		curFG:  defaultColor,
	}
	g.cells = make([][]rune, height)
	g.invert = make([]bool, width*height)
	g.fg = make([]int, width*height)
	for y := range g.cells {
		g.cells[y] = make([]rune, width)
		for x := range g.cells[y] {
			g.cells[y][x] = ' '
		}
	}
	for i := range g.fg {
		g.fg[i] = defaultColor
	}
	return g
}

func (g *termGrid) MaxHeight() int { return g.height }
func (g *termGrid) Flush()         {}

func (g *termGrid) Print(s string) error {
	for _, r := range s {
		if g.row >= 0 && g.row < g.height && g.col >= 0 && g.col < g.width {
			idx := g.row*g.width + g.col
			g.cells[g.row][g.col] = r
			g.invert[idx] = g.curInvert
			g.fg[idx] = g.curFG
		}
		g.col += runewidth.RuneWidth(r)
	}
	return nil
}

func (g *termGrid) SGR(n int) error { return nil }

func (g *termGrid) SetInvert() error { g.curInvert = true; return nil }

func (g *termGrid) SetNormal() error {
	g.curInvert = false
	g.curFG = defaultColor
	return nil
}

func (g *termGrid) SetFG(c int) error { g.curFG = c; return nil }

func (g *termGrid) MoveUp(n int) error {
	g.row -= n
	return nil
}

func (g *termGrid) SetCol(c int) error {
	g.col = c
	return nil
}

func (g *termGrid) ClearLine() error {
	if g.row < 0 || g.row >= g.height {
		return nil
	}
	for x := g.col; x < g.width; x++ {
		g.cells[g.row][x] = ' '
	}
	return nil
}

func (g *termGrid) NewLine() error {
	g.row++
	g.col = 0
	return g.ClearLine()
}

// String renders the grid with 'i' marking inverted cells and 'm' marking
// magenta (matched) cells, one marker line per content line, so a reviewer
// can eyeball both the text and its attributes in one diff.
func (g *termGrid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		b.WriteString(strings.TrimRight(string(g.cells[y]), " "))
		b.WriteByte('\n')
		var marks strings.Builder
		any := false
		for x := 0; x < g.width; x++ {
			idx := y*g.width + x
			switch {
			case g.invert[idx]:
				marks.WriteByte('i')
				any = true
			case g.fg[idx] == matchColor:
				marks.WriteByte('m')
				any = true
			default:
				marks.WriteByte(' ')
			}
		}
		if any {
			b.WriteString(strings.TrimRight(marks.String(), " "))
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func frameFor(s string) [5]byte {
	var buf [5]byte
	copy(buf[:4], s)
	return buf
}

// TestSelectorDataDriven walks testdata/selector scripts. Each "new"
// command builds a Selector over a fresh termGrid; each "input" command
// feeds one frame per input line through processFrame and prints the
// selector's resulting state (or the accepted candidate).
func TestSelectorDataDriven(t *testing.T) {
	var sel *Selector
	var grid *termGrid

	datadriven.Walk(t, "testdata/selector", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
			switch td.Cmd {
			case "new":
				var width, height int
				td.ScanArgs(t, "width", &width)
				td.ScanArgs(t, "height", &height)
				candidates := strings.Split(strings.TrimSpace(td.Input), "\n")
				grid = newTermGrid(width, height)
				bindings, err := assembleBindings(nil)
				if err != nil {
					t.Fatal(err)
				}
				sel = &Selector{
					term:       grid,
					candidates: candidates,
					bindings:   bindings,
					height:     height,
				}
				if err := sel.render(); err != nil {
					return fmt.Sprintf("error: %v\n", err)
				}
				return summarize(sel)

			case "input":
				lines := strings.Split(strings.TrimRight(td.Input, "\n"), "\n")
				for _, line := range lines {
					candidate, done, err := sel.processFrame(frameFor(unescapeFrame(line)))
					if err != nil {
						return fmt.Sprintf("error: %v\n", err)
					}
					if done {
						return fmt.Sprintf("accepted: %s\n", candidate)
					}
				}
				return summarize(sel)
			}
			return ""
		})
	})
}

// summarize renders the selector's logical state (not the raw grid bytes)
// so golden files describe what changed without depending on exact cursor
// and column bookkeeping.
func summarize(sel *Selector) string {
	var b strings.Builder
	fmt.Fprintf(&b, "query=%q selected=%d firstVisible=%d\n", sel.query, sel.selected, sel.firstVisible)
	for i, r := range sel.activeRows() {
		marker := "  "
		if i == sel.selected {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%s\n", marker, r.text)
	}
	return b.String()
}

// unescapeFrame expands the handful of control-sequence spellings the
// testdata files use, since raw control bytes are awkward to author by
// hand in a text file.
func unescapeFrame(s string) string {
	switch s {
	case "\\r":
		return "\r"
	case "\\n":
		return "\n"
	case "up":
		return "\x1b[A"
	case "down":
		return "\x1b[B"
	case "backspace":
		return "\x7f"
	}
	if strings.HasPrefix(s, "ctrl-") && len(s) == 6 {
		return string([]byte{s[5] - 'a' + 1})
	}
	return s
}
