package naru

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/insidewhy/naru/internal/config"
	"github.com/insidewhy/naru/internal/fuzzy"
)

// termReader is the subset of InputReader the selector drives, narrowed so
// tests can script byte sequences without a real tty.
type termReader interface {
	Read() ([5]byte, error)
}

// Selector owns the query, the ranked match list, the selected index, the
// scroll offset, and the assembled key-binding table. It drives a Terminal
// and InputReader through one interactive loop per §4.4.
type Selector struct {
	term   termOps
	reader termReader

	candidates []string
	bindings   map[string]action

	query   []byte
	matches []fuzzy.Match

	selected     int
	firstVisible int
	height       int
}

// NewSelector resolves the viewport height from the config and terminal
// size, assembles the binding table, and returns a Selector ready to run.
func NewSelector(term *Terminal, candidates []string, cfg *config.Config) (*Selector, error) {
	bindings, err := assembleBindings(cfg.Bindings)
	if err != nil {
		return nil, err
	}

	height := resolveHeight(cfg.Window.Height, term.MaxHeight())

	return &Selector{
		term:       term,
		reader:     term.GetReader(),
		candidates: candidates,
		bindings:   bindings,
		height:     height,
	}, nil
}

func resolveHeight(configured, maxHeight int) int {
	if configured > 0 {
		if configured < maxHeight {
			return configured
		}
		return maxHeight
	}
	h := maxHeight + configured
	if h < 1 {
		return 1
	}
	return h
}

// Run drives the main loop to completion and returns the accepted
// candidate, or an error on any termination path other than acceptance
// (including the reader hitting end of input on the tty). The
// guaranteed-release sequence (§7) is the caller's responsibility, since
// it also covers acquisition failures that never reach Run.
func (s *Selector) Run() (string, error) {
	if err := s.render(); err != nil {
		return "", err
	}
	for {
		s.term.Flush()

		buf, err := s.reader.Read()
		if err != nil {
			return "", err
		}

		candidate, done, err := s.processFrame(buf)
		if err != nil {
			return "", err
		}
		if done {
			return candidate, nil
		}
	}
}

// processFrame interprets one input frame (as returned by InputReader.Read)
// and applies its effect to the selector's state, driving any redraw the
// action requires. It is split out from Run so the dispatch logic can be
// exercised directly against scripted frames, without a blocking reader in
// the loop.
func (s *Selector) processFrame(buf [5]byte) (candidate string, done bool, err error) {
	if buf[0] == 0 {
		// Signal-interrupted pselect: redraw unconditionally (window size
		// may have changed) and echo the query back, since render() always
		// erases everything after "> ".
		return "", false, s.redraw()
	}

	n := 0
	for n < 4 && buf[n] != 0 {
		n++
	}
	input := buf[:n]
	debugPrintf("read: %s\n", debugInput(input))

	if !utf8.Valid(input) {
		return "", false, fmt.Errorf("naru: input is not valid UTF-8")
	}
	if len(input) == 0 {
		return "", false, nil
	}

	if string(input) == "\r" || string(input) == "\n" {
		c, ok := s.accept()
		if !ok {
			return "", false, nil
		}
		return c, true, nil
	}

	if isControlByte(input[0]) {
		act, ok := s.bindings[string(input)]
		if !ok {
			return "", false, nil
		}
		debugPrintf("dispatch: %s\n", act)
		return "", false, s.dispatch(act)
	}

	s.query = append(s.query, input...)
	if err := s.term.Print(string(input)); err != nil {
		return "", false, err
	}
	s.term.Flush()
	s.rescore()
	return "", false, s.redraw()
}

func isControlByte(b byte) bool {
	return b < 0x20 || b == 0x7f
}

// dispatch invokes the named action; each action is responsible for its
// own redraw per §4.4.
func (s *Selector) dispatch(act action) error {
	switch act {
	case actionSelectNext:
		if s.selected+1 < s.activeLen() {
			s.selected++
			return s.redraw()
		}
	case actionSelectPrev:
		if s.selected > 0 {
			s.selected--
			return s.redraw()
		}
	case actionBackspace:
		if len(s.query) == 0 {
			return nil
		}
		_, size := utf8.DecodeLastRune(s.query)
		s.query = s.query[:len(s.query)-size]
		s.rescore()
		return s.redraw()
	}
	return nil
}

// accept returns the candidate at the selected index of the active list.
// Per the recommendation resolving the source's ambiguity here: when a
// query is active and nothing matches it, accept is a no-op rather than
// falling back to an original-list index.
func (s *Selector) accept() (string, bool) {
	if len(s.query) > 0 {
		if len(s.matches) == 0 {
			return "", false
		}
		return s.matches[s.selected].Candidate, true
	}
	if len(s.candidates) == 0 {
		return "", false
	}
	return s.candidates[s.selected], true
}

func (s *Selector) activeLen() int {
	if len(s.query) > 0 {
		return len(s.matches)
	}
	return len(s.candidates)
}

// rescore maps the scorer over every candidate, drops non-matches, and
// sorts the survivors descending by score with a stable tie-break on
// original candidate order.
func (s *Selector) rescore() {
	if len(s.query) == 0 {
		s.matches = nil
		s.selected = 0
		s.firstVisible = 0
		return
	}

	query := string(s.query)
	matches := make([]fuzzy.Match, 0, len(s.candidates))
	for _, c := range s.candidates {
		score, ranges, ok := fuzzy.Score(query, c)
		if !ok {
			continue
		}
		matches = append(matches, fuzzy.Match{Candidate: c, Score: score, Ranges: ranges})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	s.matches = matches
	s.selected = 0
	s.firstVisible = 0
}

// redraw performs the scroll-maintenance step, renders the viewport, and
// re-echoes the query (render always erases anything after "> ").
func (s *Selector) redraw() error {
	if err := s.render(); err != nil {
		return err
	}
	if err := s.term.Print(string(s.query)); err != nil {
		return err
	}
	s.term.Flush()
	return nil
}

// render applies scroll maintenance and draws the viewport. It does not
// flush or re-print the query; callers that need the query visible again
// use redraw instead.
func (s *Selector) render() error {
	visibleCount := s.height - 1
	if visibleCount > s.activeLen() {
		visibleCount = s.activeLen()
	}
	if visibleCount < 0 {
		visibleCount = 0
	}

	if s.selected >= s.firstVisible+visibleCount {
		s.firstVisible = s.selected + 1 - visibleCount
	} else if s.selected < s.firstVisible {
		s.firstVisible = s.selected
	}

	return renderViewport(s.term, s.activeRows(), s.selected, s.firstVisible, s.height)
}

func (s *Selector) activeRows() []row {
	if len(s.query) == 0 {
		rows := make([]row, len(s.candidates))
		for i, c := range s.candidates {
			rows[i] = row{text: c}
		}
		return rows
	}

	rows := make([]row, len(s.matches))
	for i, m := range s.matches {
		ranges := make([]matchRange, len(m.Ranges))
		for j, r := range m.Ranges {
			ranges[j] = matchRange{offset: r.Offset, length: r.Length}
		}
		rows[i] = row{text: m.Candidate, ranges: ranges}
	}
	return rows
}
