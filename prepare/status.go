package prepare

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
)

// Reporter surfaces human-facing progress around each logical step.
// It has no effect on control flow.
type Reporter interface {
	Start(msg string)
	Succeed(msg string)
	Info(msg string)
	Warn(msg string)
}

// ConsoleReporter writes colored status lines to Out (stdout if nil).
type ConsoleReporter struct {
	Out io.Writer
}

func (r ConsoleReporter) Start(msg string) {
	fmt.Fprintln(r.out(), color.Cyan.Sprint("▸ "+msg))
}

func (r ConsoleReporter) Succeed(msg string) {
	fmt.Fprintln(r.out(), color.Green.Sprint("✔ "+msg))
}

func (r ConsoleReporter) Info(msg string) {
	fmt.Fprintln(r.out(), color.Gray.Sprint("ℹ "+msg))
}

func (r ConsoleReporter) Warn(msg string) {
	fmt.Fprintln(r.out(), color.Yellow.Sprint("⚠ "+msg))
}

func (r ConsoleReporter) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// NopReporter discards all status output.
type NopReporter struct{}

func (NopReporter) Start(string)   {}
func (NopReporter) Succeed(string) {}
func (NopReporter) Info(string)    {}
func (NopReporter) Warn(string)    {}
