package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/funvibe/hostbridge/internal/codec"
	"github.com/funvibe/hostbridge/internal/config"
	"github.com/funvibe/hostbridge/internal/registry"
)

// Dispatcher interprets a synthesized script inside the host process and
// emits the delimited stdout protocol: BEGIN marker, import diagnostics,
// END marker, and on any error the ERROR block followed by termination
// with the failure code.
type Dispatcher struct {
	reg         *registry.Registry
	out         io.Writer
	failureCode int
}

// NewDispatcher creates a dispatcher writing the protocol to out.
func NewDispatcher(reg *registry.Registry, out io.Writer, failureCode int) *Dispatcher {
	return &Dispatcher{reg: reg, out: out, failureCode: failureCode}
}

// RunFile interprets the script at path and returns the process exit
// code: 0 on success, the failure code when anything after the BEGIN
// marker fails.
func (d *Dispatcher) RunFile(path string) int {
	fmt.Fprintln(d.out, config.BeginLine)

	err := d.run(path)

	fmt.Fprintln(d.out, config.EndLine)
	if err == nil {
		return 0
	}

	fmt.Fprintln(d.out, config.ErrorBeginLine)
	fmt.Fprintln(d.out, err)
	fmt.Fprintf(d.out, "%s", errStack(err))
	fmt.Fprintln(d.out, config.ErrorEndLine)
	return d.failureCode
}

// run performs everything the guarded region of the script covers:
// path extension, module resolution, and evaluation of the call.
func (d *Dispatcher) run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parsing script: %w", err)
	}

	if len(s.Paths) > 0 {
		joined := strings.Join(s.Paths, string(os.PathListSeparator))
		if err := os.Setenv(config.ImportPathEnv, joined); err != nil {
			return fmt.Errorf("extending module search path: %w", err)
		}
	}

	for _, m := range s.Modules {
		if m == codec.Module {
			continue // the dispatcher itself provides deserialization
		}
		if !d.reg.HasModule(m) {
			return fmt.Errorf("module not registered: %s", m)
		}
	}
	fmt.Fprintln(d.out, config.ImportOKLine)

	_, err = d.eval(s.Call)
	return err
}

// eval evaluates a call node: arguments left to right, nested calls
// recursively, then the registry function. Panics out of user code are
// recovered into errors carrying the panic-site stack.
func (d *Dispatcher) eval(call *Call) (result any, err error) {
	fn, ok := d.reg.Lookup(call.Module, call.Name)
	if !ok {
		return nil, fmt.Errorf("function not registered: %s.%s", call.Module, call.Name)
	}

	var args []any
	kwargs := map[string]any{}
	for i, arg := range call.Args {
		switch arg.Kind {
		case ArgCall:
			v, err := d.eval(arg.Call)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		case ArgLiteral:
			v, err := codec.DecodeLiteral(arg.Literal)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: argument %d: %w", call.Module, call.Name, i, err)
			}
			args = append(args, v)
		case ArgKwargs:
			v, err := codec.DecodeLiteral(arg.Literal)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: keyword arguments: %w", call.Module, call.Name, err)
			}
			m, ok := v.(map[string]any)
			if !ok && v != nil {
				return nil, fmt.Errorf("%s.%s: keyword arguments decoded to %T", call.Module, call.Name, v)
			}
			if m != nil {
				kwargs = m
			}
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = &panicError{value: rec, stack: debug.Stack()}
			result = nil
		}
	}()
	return fn(args, kwargs)
}

// panicError carries a recovered panic and the stack captured at the
// recovery site, so the error block shows where user code failed.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	if err, ok := e.value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.value)
}

// errStack returns the traceback text for the error block: the panic-site
// stack when available, otherwise the dispatcher's own stack.
func errStack(err error) []byte {
	var pe *panicError
	if errors.As(err, &pe) {
		return pe.stack
	}
	return debug.Stack()
}
