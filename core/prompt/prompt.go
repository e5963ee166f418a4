package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Stdin asks questions on an interactive terminal.
// Only "y" or "yes" (any case, surrounding space ignored) counts as affirmative.
type Stdin struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdin creates a confirmer reading answers from in and printing questions to out.
func NewStdin(in io.Reader, out io.Writer) *Stdin {
	return &Stdin{in: bufio.NewReader(in), out: out}
}

// Confirm prints the question and blocks until a line is read.
// A read failure, including EOF, is a negative answer.
func (s *Stdin) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprint(s.out, question+" ")
	response, err := s.in.ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(s.out)
		return false, nil
	}

	return IsAffirmative(response), nil
}

// IsAffirmative reports whether a typed answer means yes.
func IsAffirmative(response string) bool {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Fixed answers every question the same way, for --yes / --no.
type Fixed struct {
	Answer bool
	Out    io.Writer
}

// Confirm echoes the question with the fixed answer when Out is set.
func (f Fixed) Confirm(ctx context.Context, question string) (bool, error) {
	if f.Out != nil {
		answer := "no"
		if f.Answer {
			answer = "yes"
		}
		fmt.Fprintf(f.Out, "%s %s (auto-answered)\n", question, answer)
	}
	return f.Answer, nil
}
