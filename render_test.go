package naru

import "testing"

func TestFindLastSGRByte(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"plain text", "banana", 0},
		{"single sgr", "\x1b[31mred", 4},
		{"merged params", "\x1b[1;31mbold red", 6},
		{"two consecutive sgrs", "\x1b[31m\x1b[1mred", 8},
		{"sgr must be terminated by m", "\x1b[31red", 0},
		{"esc not followed by bracket", "\x1b31mred", 0},
		{"bare esc at end", "\x1b", 0},
		{"bracket with no digits is not a sequence", "\x1b[mtext", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := findLastSGRByte(tc.in); got != tc.want {
				t.Errorf("findLastSGRByte(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

// fakeTerm records every operation invoked on it, for assertions about
// exact escape sequencing without a real terminal.
type fakeTerm struct {
	ops       []string
	maxHeight int
}

func (f *fakeTerm) record(s string) error { f.ops = append(f.ops, s); return nil }

func (f *fakeTerm) Print(s string) error      { return f.record("print:" + s) }
func (f *fakeTerm) SGR(n int) error            { return f.record("sgr") }
func (f *fakeTerm) SetInvert() error           { return f.record("invert") }
func (f *fakeTerm) SetNormal() error            { return f.record("normal") }
func (f *fakeTerm) SetFG(c int) error            { return f.record("fg") }
func (f *fakeTerm) MoveUp(n int) error           { return f.record("up") }
func (f *fakeTerm) SetCol(c int) error            { return f.record("col") }
func (f *fakeTerm) ClearLine() error              { return f.record("clear") }
func (f *fakeTerm) NewLine() error                { return f.record("newline") }
func (f *fakeTerm) Flush()                        {}
func (f *fakeTerm) MaxHeight() int                { return f.maxHeight }

func TestDrawRowSplicesInvertIntoOwnSGR(t *testing.T) {
	f := &fakeTerm{}
	r := row{text: "\x1b[31mred\x1b[0m"}
	if err := drawRow(f, r, true); err != nil {
		t.Fatal(err)
	}
	// The candidate's own leading SGR parameters are printed, then ";7" is
	// spliced in just before the closing 'm' (so the invert attribute joins
	// the same SGR sequence instead of being a separate one a trailing
	// ESC[0m in the candidate's own text would cancel).
	want := []string{"print:\x1b[31", "print:;7", "print:mred\x1b[0m"}
	if len(f.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", f.ops, want)
	}
	for i := range want {
		if f.ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, f.ops[i], want[i])
		}
	}
}

func TestDrawRowPlainSelectedUsesInvertAndNormal(t *testing.T) {
	f := &fakeTerm{}
	if err := drawRow(f, row{text: "banana"}, true); err != nil {
		t.Fatal(err)
	}
	want := []string{"invert", "print:banana", "normal"}
	if len(f.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", f.ops, want)
	}
	for i := range want {
		if f.ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, f.ops[i], want[i])
		}
	}
}

func TestDrawRowUnselectedIsUnadorned(t *testing.T) {
	f := &fakeTerm{}
	if err := drawRow(f, row{text: "banana"}, false); err != nil {
		t.Fatal(err)
	}
	want := []string{"print:banana"}
	if len(f.ops) != len(want) || f.ops[0] != want[0] {
		t.Fatalf("ops = %v, want %v", f.ops, want)
	}
}

func TestDrawRowOverlaysMatchRanges(t *testing.T) {
	f := &fakeTerm{}
	r := row{text: "banana", ranges: []matchRange{{offset: 0, length: 1}, {offset: 2, length: 1}}}
	if err := drawRow(f, r, false); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"fg", "print:b", "fg",
		"print:a",
		"fg", "print:n", "fg",
		"print:ana",
	}
	if len(f.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", f.ops, want)
	}
	for i := range want {
		if f.ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, f.ops[i], want[i])
		}
	}
}

func TestRenderViewportClampsVisibleCountToActiveLen(t *testing.T) {
	f := &fakeTerm{}
	active := []row{{text: "one"}, {text: "two"}}
	if err := renderViewport(f, active, 1, 0, 20); err != nil {
		t.Fatal(err)
	}
	newlines := 0
	for _, op := range f.ops {
		if op == "newline" {
			newlines++
		}
	}
	if newlines != len(active) {
		t.Errorf("newlines = %d, want %d", newlines, len(active))
	}
}
