// Package demux classifies a finished host run from its exit code and
// captured stdout.
//
// Exit 0 is a pass without any marker verification (the protocol has no
// integrity check). The fixed failure code means an exception inside the
// host script. Every other code is reported as its own failure category
// rather than silently passing.
package demux

import (
	"fmt"
	"strings"

	"github.com/funvibe/hostbridge/internal/config"
)

// FailurePrefix starts every host-execution failure message.
const FailurePrefix = "Error in host process!\n"

// Verdict is the classification of one host run.
type Verdict struct {
	// Passed is true only for exit code 0.
	Passed bool

	// Unexpected marks an exit code that is neither 0 nor the failure
	// code (crash, signal, unrelated host error).
	Unexpected bool

	// Message is the full failure report, empty when Passed.
	Message string

	// ErrorBlock is the text between the error markers when both were
	// found; the full stdout in Message remains authoritative.
	ErrorBlock string
}

// Classify derives the verdict for a subprocess result.
func Classify(exitCode int, stdout string) Verdict {
	switch exitCode {
	case 0:
		return Verdict{Passed: true}
	case config.FailureCode:
		return Verdict{
			Message:    FailurePrefix + stdout,
			ErrorBlock: extractErrorBlock(stdout),
		}
	default:
		return Verdict{
			Unexpected: true,
			Message:    fmt.Sprintf("host exited unexpectedly with code %d\n%s", exitCode, stdout),
			ErrorBlock: extractErrorBlock(stdout),
		}
	}
}

// extractErrorBlock returns the text between the error markers, or ""
// when either marker is missing.
func extractErrorBlock(stdout string) string {
	_, after, found := strings.Cut(stdout, config.ErrorBeginLine)
	if !found {
		return ""
	}
	block, _, found := strings.Cut(after, config.ErrorEndLine)
	if !found {
		return ""
	}
	return strings.Trim(block, "\n")
}
