package bridge

import (
	"fmt"
	"io"
	"strconv"

	"github.com/funvibe/hostbridge/internal/config"
	"github.com/funvibe/hostbridge/internal/registry"
	"github.com/funvibe/hostbridge/internal/script"
)

// HostMain implements the host side of the CLI contract
//
//	-b --python-exit-code <N> --python <scriptfile>
//
// and returns the process exit code. A binary embedding the bridge (or a
// test binary doubling as the host) calls this when it detects the host
// invocation, passing the registry holding its bound functions.
func HostMain(argv []string, reg *registry.Registry, out io.Writer) int {
	failureCode := config.FailureCode
	scriptPath := ""

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-b":
			// background flag, nothing to do
		case "--python-exit-code":
			if i+1 < len(argv) {
				i++
				if n, err := strconv.Atoi(argv[i]); err == nil {
					failureCode = n
				}
			}
		case "--python":
			if i+1 < len(argv) {
				i++
				scriptPath = argv[i]
			}
		}
	}

	if scriptPath == "" {
		fmt.Fprintln(out, "hostbridge: missing --python <scriptfile>")
		return failureCode
	}

	return script.NewDispatcher(reg, out, failureCode).RunFile(scriptPath)
}

// IsHostInvocation reports whether argv looks like the host-side CLI
// contract. Useful in TestMain-style entry points that must decide
// between running tests and acting as the host.
func IsHostInvocation(argv []string) bool {
	for _, arg := range argv {
		if arg == "--python" {
			return true
		}
	}
	return false
}
