package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

func init() {
	// Color stays on without a TTY unless NO_COLOR is set.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// success prints a confirmation line in green to the error stream, keeping
// stdout for JSON.
func (a *app) success(format string, args ...any) {
	green.Fprintf(a.errOut, "✓ "+format+"\n", args...)
}

// warning prints a warning line in yellow to the error stream.
func (a *app) warning(format string, args ...any) {
	yellow.Fprintf(a.errOut, "! "+format+"\n", args...)
}

// printError reports a failed command.
func printError(w io.Writer, err error) {
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}

// printJSON writes v as indented JSON followed by a newline.
func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}
