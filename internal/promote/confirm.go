package promote

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ConfirmToken is the exact string an operator must type to approve an
// interactive promotion. Anything else aborts with no files copied.
const ConfirmToken = "yes"

// Confirmer decides whether a displayed plan may be executed.
type Confirmer interface {
	Confirm(plan []Item) (bool, error)
}

// AlwaysConfirm approves without asking; used by the non-interactive
// override flag.
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm([]Item) (bool, error) { return true, nil }

// NeverConfirm declines everything; used in tests and dry runs.
type NeverConfirm struct{}

func (NeverConfirm) Confirm([]Item) (bool, error) { return false, nil }

// PromptConfirm reads the confirmation token from In, refusing outright
// when stdin is not a terminal so a piped invocation cannot accidentally
// approve a promotion.
type PromptConfirm struct {
	In  io.Reader
	Out io.Writer
}

func (p PromptConfirm) Confirm(plan []Item) (bool, error) {
	in := p.In
	out := p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --yes")
	}

	fmt.Fprintf(out, "Promote %d file(s)? Type %q to proceed: ", len(plan), ConfirmToken)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.TrimSpace(answer) == ConfirmToken, nil
}

// Describe writes the plan in source -> dest form for operator review.
func Describe(plan []Item, out io.Writer) {
	for _, item := range plan {
		fmt.Fprintf(out, "  %s -> %s\n", item.Source, item.Dest)
	}
}
