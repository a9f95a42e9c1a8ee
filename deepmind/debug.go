package deepmind

import (
	"fmt"
	"os"
	"strings"
)

// Diagnostics are a parallel channel, tagged differently from protocol lines
// and written to stderr, so the downstream consumer never parses them.
var tracerLogLevel = strings.ToLower(os.Getenv("DEEPMIND_TRACER_LOG_LEVEL"))
var isDebugEnabled = tracerLogLevel == "debug" || tracerLogLevel == "trace"
var isTraceEnabled = tracerLogLevel == "trace"

func debugLog(msg string, args ...interface{}) {
	if isDebugEnabled {
		fmt.Fprintf(os.Stderr, "[deepmind] "+msg+"\n", args...)
	}
}

func traceLog(msg string, args ...interface{}) {
	if isTraceEnabled {
		fmt.Fprintf(os.Stderr, "[deepmind] "+msg+"\n", args...)
	}
}
