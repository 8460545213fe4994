package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question and reads one line from in. Only "y" or
// "yes" (any case) count as yes; end of input counts as no.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// RecrawlPrompt returns a recrawl decision function that asks the user
// whether an already crawled category should be crawled again. A
// *bufio.Reader passed as in is used as is, so it can be shared with other
// prompts reading the same stream.
func RecrawlPrompt(in io.Reader, out io.Writer) func(category string, existing int) (bool, error) {
	reader := bufio.NewReader(in)
	return func(category string, existing int) (bool, error) {
		question := fmt.Sprintf("URL list for '%s' found (%d links). Crawl again?", category, existing)
		return Confirm(reader, out, question)
	}
}
