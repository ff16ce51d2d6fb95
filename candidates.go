package naru

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadCandidates reads lines from r until EOF, trims surrounding
// whitespace, drops empty lines, and returns the remainder in the order
// received. This is the trivial stdin-to-choices ingestion the
// specification treats as an external collaborator (§6): the terminal UI
// never touches r itself, so a caller is free to pass os.Stdin without the
// Selector ever seeing it.
func ReadCandidates(r io.Reader) ([]string, error) {
	var candidates []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		candidates = append(candidates, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("naru: reading candidates: %w", err)
	}
	return candidates, nil
}
