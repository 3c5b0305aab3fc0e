// Package prompt implements the interactive y/n confirmations that gate
// environment-mismatch continuation, autostart setup, immediate service
// start, and cleanup. Every prompt defaults to the no-op path: only an
// exact affirmative answer proceeds.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks confirmations over a single buffered reader, so sequential
// prompts within one command each consume exactly one input line instead of
// a fresh buffer swallowing the remaining ones.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter reading answers from r and writing questions to w.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w}
}

// Confirm asks question and reads a single line. It returns true only for
// the affirmative token ("y"/"Y" after trimming); any other input, including
// EOF and read errors, declines.
func (p *Prompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
