// Package expr builds the textual call expressions evaluated inside the
// host process.
//
// A call expression is the rendered form "<module>.<name>(<args>)" plus
// the transitive set of modules the host must resolve before evaluating
// it. Expressions are immutable once built and are consumed within a
// single outer-process invocation.
package expr

import (
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"
)

// CallExpression represents a future function call: the rendered call
// string and the modules required to evaluate it.
type CallExpression struct {
	callString string
	modules    map[string]struct{}
}

// CallString returns the rendered textual form.
func (e *CallExpression) CallString() string {
	return e.callString
}

// Modules returns a sorted copy of the required module set.
func (e *CallExpression) Modules() []string {
	names := make([]string, 0, len(e.modules))
	for name := range e.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// moduleSet returns the internal set for merging. Callers must not mutate.
func (e *CallExpression) moduleSet() map[string]struct{} {
	return e.modules
}

func (e *CallExpression) String() string {
	return "CallExpression(modules=" + strings.Join(e.Modules(), ",") + ", call=" + e.callString + ")"
}

// FuncIdentity resolves a Go function value to its defining module and
// simple name. The module is the full package path; for package main
// (not resolvable across processes) it falls back to the stem of the
// defining source file. Anonymous functions yield compiler-generated
// names and produce an unusable but non-failing identity.
func FuncIdentity(fn any) (module, name string) {
	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return "", ""
	}

	full := rf.Name()
	if idx := strings.LastIndex(full, "."); idx != -1 {
		module = full[:idx]
		name = full[idx+1:]
	} else {
		name = full
	}

	if module == "main" {
		file, _ := rf.FileLine(rf.Entry())
		module = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return module, name
}

// Build constructs the expression for calling fn with the given argument
// expressions. The module set is the union of every argument's set plus
// fn's own defining module.
func Build(fn any, args []*CallExpression) *CallExpression {
	module, name := FuncIdentity(fn)
	return BuildNamed(module, name, args)
}

// BuildNamed is Build for a function already resolved to module and name.
func BuildNamed(module, name string, args []*CallExpression) *CallExpression {
	modules := map[string]struct{}{module: {}}
	argStrings := make([]string, len(args))
	for i, arg := range args {
		argStrings[i] = arg.callString
		for m := range arg.modules {
			modules[m] = struct{}{}
		}
	}
	return &CallExpression{
		callString: Compose(module, name, argStrings),
		modules:    modules,
	}
}

// Compose renders "<module>.<name>(<args>)" with arguments joined by ", ".
func Compose(module, name string, argStrings []string) string {
	return module + "." + name + "(" + strings.Join(argStrings, ", ") + ")"
}
