package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/contractdesk/internal/common"
)

// Notifier prints list notifications as styled lines. Successes go to out
// and failures to errOut.
type Notifier struct {
	out    io.Writer
	errOut io.Writer
}

// NewNotifier creates a notifier. Nil writers fall back to stdout and
// stderr.
func NewNotifier(out, errOut io.Writer) *Notifier {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Notifier{out: out, errOut: errOut}
}

// Success implements listview.Notifier.
func (n *Notifier) Success(msg string) {
	if _, err := fmt.Fprintln(n.out, FormatSuccess(msg)); err != nil {
		slog.Warn("Failed to write notification", "error", err)
	}
}

// Error implements listview.Notifier.
func (n *Notifier) Error(err error) {
	if _, werr := fmt.Fprintln(n.errOut, FormatError(common.Message(err))); werr != nil {
		slog.Warn("Failed to write notification", "error", werr)
	}
}
