package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
	"github.com/mlops-tools/dfa-wizard/internal/progress"
	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

// newReporter returns a spinner on stderr when it is a terminal and logs
// are not verbose.
func newReporter() progress.Reporter {
	if verbose || debug || !term.IsTerminal(int(os.Stderr.Fd())) {
		return progress.NewNoOpProgress()
	}
	return progress.NewCLIProgress(os.Stderr)
}

func printMessage(w io.Writer, m wizard.RequestMessage) {
	prefix := "  "
	if m.Kind == wizard.MessageError {
		prefix = "✗ "
	}
	fmt.Fprintf(w, "%s%s\n", prefix, m.String())
}

func printProblems(w io.Writer, problems []analytics.Problem) {
	fmt.Fprintf(w, "The job definition has %d problem(s):\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}
