package core

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// StartupStep records the outcome of one startup check for the console report.
type StartupStep struct {
	Name    string
	Passed  bool
	Warning bool
	Message string
}

// StartupReport collects startup checks and prints a colored summary banner.
// The report is informational: a deployment with no provider credentials is
// still valid and serves placeholder images.
type StartupReport struct {
	output io.Writer
	steps  []StartupStep
}

// NewStartupReport creates a StartupReport writing to stdout.
func NewStartupReport() *StartupReport {
	return &StartupReport{output: os.Stdout}
}

// WithOutput sets the output writer. Intended for tests.
func (r *StartupReport) WithOutput(w io.Writer) *StartupReport {
	r.output = w
	return r
}

// Pass records a successful check.
func (r *StartupReport) Pass(name, message string) {
	r.steps = append(r.steps, StartupStep{Name: name, Passed: true, Message: message})
}

// Warn records a non-fatal problem, e.g. a provider with no credential.
func (r *StartupReport) Warn(name, message string) {
	r.steps = append(r.steps, StartupStep{Name: name, Warning: true, Message: message})
}

// Fail records a fatal problem.
func (r *StartupReport) Fail(name, message string) {
	r.steps = append(r.steps, StartupStep{Name: name, Message: message})
}

// Steps returns the recorded steps in order.
func (r *StartupReport) Steps() []StartupStep {
	return r.steps
}

// Failed reports whether any fatal step was recorded.
func (r *StartupReport) Failed() bool {
	for _, s := range r.steps {
		if !s.Passed && !s.Warning {
			return true
		}
	}
	return false
}

// Print writes the banner and one line per step.
func (r *StartupReport) Print(appName, version string) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	fmt.Fprintln(r.output)
	bold.Fprintf(r.output, "  %s %s\n", appName, version)
	fmt.Fprintln(r.output, "  ================================")

	for _, s := range r.steps {
		switch {
		case s.Passed:
			green.Fprintf(r.output, "  [ OK ] ")
		case s.Warning:
			yellow.Fprintf(r.output, "  [WARN] ")
		default:
			red.Fprintf(r.output, "  [FAIL] ")
		}
		fmt.Fprintf(r.output, "%s", s.Name)
		if s.Message != "" {
			fmt.Fprintf(r.output, ": %s", s.Message)
		}
		fmt.Fprintln(r.output)
	}
	fmt.Fprintln(r.output)
}
