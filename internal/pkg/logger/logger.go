// Package logger wraps klog so that command code logs through one place.
// Messages print unadorned on stdout at verbosity 0 and gain klog headers
// only when a higher verbosity is requested via the -v flag.
package logger

import (
	"flag"
	"strings"

	"k8s.io/klog/v2"
)

// VerbosityLevel selects when a message is emitted. An optional trailing
// VerbosityLevel argument on the log helpers raises the threshold for that
// message; without it the message always prints.
type VerbosityLevel int32

const (
	VerbosityLevelInfo  VerbosityLevel = 0
	VerbosityLevelDebug VerbosityLevel = 1
)

// Init registers the klog flags on the standard flag set so cobra can
// surface them (e.g. -v=1). Must run before flag parsing.
func Init() {
	klog.InitFlags(flag.CommandLine)

	// klog headers (timestamps, file:line) are noise for a CLI.
	_ = flag.Set("skip_headers", "true")
}

// Flush flushes any buffered log output.
func Flush() {
	klog.Flush()
}

// Infof logs a formatted info message. A trailing VerbosityLevel argument
// beyond the format verbs gates the message, e.g.
// Infof("pod %s ready\n", name, VerbosityLevelDebug).
func Infof(format string, args ...any) {
	args, level := splitVerbosity(format, args)
	klog.V(klog.Level(level)).Infof(format, args...)
}

// Infoln logs an info message with a newline. An optional VerbosityLevel
// gates the message.
func Infoln(msg string, level ...VerbosityLevel) {
	klog.V(klog.Level(verbosityOf(level))).Infoln(msg)
}

// Warningf logs a formatted warning message.
func Warningf(format string, args ...any) {
	args, level := splitVerbosity(format, args)
	klog.V(klog.Level(level)).Infof("Warning: "+format, args...)
}

// Warningln logs a warning message with a newline.
func Warningln(msg string, level ...VerbosityLevel) {
	klog.V(klog.Level(verbosityOf(level))).Infoln("Warning: " + msg)
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...any) {
	klog.Errorf(format, args...)
}

// Errorln logs an error message with a newline.
func Errorln(msg string) {
	klog.Errorln(msg)
}

func verbosityOf(level []VerbosityLevel) VerbosityLevel {
	if len(level) == 0 {
		return VerbosityLevelInfo
	}

	return level[0]
}

// splitVerbosity strips a trailing VerbosityLevel argument when one was
// passed beyond what the format string consumes.
func splitVerbosity(format string, args []any) ([]any, VerbosityLevel) {
	if len(args) == 0 {
		return args, VerbosityLevelInfo
	}

	verbs := strings.Count(format, "%") - 2*strings.Count(format, "%%")
	if len(args) <= verbs {
		return args, VerbosityLevelInfo
	}

	switch v := args[len(args)-1].(type) {
	case VerbosityLevel:
		return args[:len(args)-1], v
	case int:
		return args[:len(args)-1], VerbosityLevel(v)
	}

	return args, VerbosityLevelInfo
}

// Fatalf logs a formatted message and exits. Use sparingly; command code
// should return errors instead.
func Fatalf(format string, args ...any) {
	klog.Fatalf(format, args...)
}
