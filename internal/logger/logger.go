package logger

import (
	"github.com/fatih/color" // Colored console output; colors switch off automatically when stdout is not a terminal
)

// Leveled printers. Each is a package-level function variable that behaves like
// fmt.Printf; callers prefix messages with [INFO], [WARN], [ERROR] or [DEBUG]
// themselves so the level stays readable in a log file without colors.

// Info logs progress and success messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs conditions worth a look that do not fail the run (an empty package
// list, a skipped phase) in bright magenta.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs failed steps and phases in red. The run keeps going after an Error.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs subprocess command lines, stderr and file operations in cyan once
// Init(true) has run. Until then it is a no-op, so packages can log from tests and
// before the CLI has parsed --debug.
var Debug = func(format string, a ...any) {}

// Run output printers. These carry no level prefix.

// Header prints a phase or step heading in bold bright blue, e.g. "Installing apt apps".
var Header = color.New(color.Bold, color.FgHiBlue).PrintfFunc()

// Banner prints the start and finish lines of a run in bold bright magenta.
var Banner = color.New(color.Bold, color.FgHiMagenta).PrintfFunc()

// Unchanged reports an export line that a startup file already had, in yellow.
var Unchanged = color.New(color.FgYellow).PrintfFunc()

// Added reports an export line that was appended to a startup file, in bright green.
var Added = color.New(color.FgHiGreen).PrintfFunc()

// Init switches debug output on or off.
// Parameters:
// - enableDebug: the value of the --debug flag.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
		return
	}
	Debug = func(format string, a ...any) {}
}

// DisableColor turns off ANSI colors for every printer in this package (--no-color).
func DisableColor() {
	color.NoColor = true
}
