// Package fuzzy implements the scorer contract used by the selector: given
// a query and a candidate, it reports whether the candidate matches and, if
// so, a score and the byte ranges that matched.
package fuzzy

import "unicode"

// Range is a byte offset and length into a candidate's bytes.
type Range struct {
	Offset int
	Length int
}

// Match is the output of a successful Score call.
type Match struct {
	Candidate string
	Score     int
	Ranges    []Range
}

const (
	consecutiveBonus = 15
	boundaryBonus    = 12
)

// Score reports whether candidate matches query as an ordered, case-folded
// subsequence. The empty query must never be passed in; callers own that
// short-circuit. Ranges are non-overlapping, sorted by offset, and fall
// within candidate's bytes. Higher scores are better matches.
func Score(query, candidate string) (score int, ranges []Range, ok bool) {
	if query == "" {
		return 0, nil, false
	}

	qRunes := []rune(query)
	cRunes, cOffsets := runeOffsets(candidate)

	matchedIdx := make([]int, 0, len(qRunes))
	searchFrom := 0
	for _, qr := range qRunes {
		qr = unicode.ToLower(qr)
		pos := -1
		for i := searchFrom; i < len(cRunes); i++ {
			if unicode.ToLower(cRunes[i]) == qr {
				pos = i
				break
			}
		}
		if pos < 0 {
			return 0, nil, false
		}
		matchedIdx = append(matchedIdx, pos)
		searchFrom = pos + 1
	}

	ranges = coalesce(matchedIdx, cOffsets)
	score = scoreMatch(matchedIdx, cRunes, len(cRunes))
	return score, ranges, true
}

// runeOffsets decodes s into its runes and the byte offset at which each
// rune starts, plus one trailing entry for the total byte length so a run
// ending at the last rune can compute its length.
func runeOffsets(s string) ([]rune, []int) {
	runes := make([]rune, 0, len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))
	return runes, offsets
}

// coalesce merges adjacent matched rune indices into contiguous byte ranges.
func coalesce(matchedIdx []int, offsets []int) []Range {
	var ranges []Range
	i := 0
	for i < len(matchedIdx) {
		start := matchedIdx[i]
		end := start
		j := i + 1
		for j < len(matchedIdx) && matchedIdx[j] == end+1 {
			end = matchedIdx[j]
			j++
		}
		ranges = append(ranges, Range{
			Offset: offsets[start],
			Length: offsets[end+1] - offsets[start],
		})
		i = j
	}
	return ranges
}

func scoreMatch(matchedIdx []int, candidate []rune, candidateLen int) int {
	score := 0

	runLen := 1
	for i := 1; i < len(matchedIdx); i++ {
		if matchedIdx[i] == matchedIdx[i-1]+1 {
			runLen++
		} else {
			score += runLen * runLen * consecutiveBonus
			runLen = 1
		}
	}
	score += runLen * runLen * consecutiveBonus

	for _, idx := range matchedIdx {
		if idx == 0 || isBoundary(candidate[idx-1]) {
			score += boundaryBonus
		}
	}

	if len(matchedIdx) > 0 {
		score -= matchedIdx[0]
	}
	score -= candidateLen

	return score
}

func isBoundary(r rune) bool {
	switch r {
	case '/', '-', '_', ' ', '.':
		return true
	}
	return false
}
