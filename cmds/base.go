/*
Package cmds offers the helpers shared by the command implementations of the
CLI. The command packages implement the Command interface.
*/
package cmds

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lainio/err2/try"
)

var ErrInvalid = errors.New("invalid command, check arguments")

type Result interface {
	JSON() ([]byte, error)
}

type Command interface {
	Validate() error
	Exec(w io.Writer) (r Result, err error)
}

// ValidateTime checks the daily schedule time in HH:MM[:SS] format.
func ValidateTime(t string) error {
	if _, err := time.Parse("15:04", t); err == nil {
		return nil
	}
	if _, err := time.Parse("15:04:05", t); err == nil {
		return nil
	}
	return fmt.Errorf("invalid time %q, must be HH:MM[:SS]", t)
}

// ParseLoggingArgs parses the glog flags from the string as if they were the
// program arguments.
func ParseLoggingArgs(s string) {
	args := make([]string, 1, 12)
	args[0] = os.Args[0]
	args = append(args, strings.Fields(s)...)
	orgArgs := os.Args
	os.Args = args
	flag.Parse()
	os.Args = orgArgs
}

// Fprintln is fmt.Fprintln but it allows writer to be nil. Note! it throws an
// error.
func Fprintln(w io.Writer, a ...any) {
	if w != nil {
		try.To1(fmt.Fprintln(w, a...))
	}
}

// Fprintf is fmt.Fprintf but it allows writer to be nil. Note! it throws an
// error.
func Fprintf(w io.Writer, format string, a ...any) {
	if w != nil {
		try.To1(fmt.Fprintf(w, format, a...))
	}
}
