package expr

import (
	"github.com/funvibe/hostbridge/internal/codec"
)

// Aggregate converts invocation arguments into the mixed argument strings
// of a call expression.
//
// Positional arguments that are themselves call expressions contribute
// their rendered text and module set. Every other positional value is
// serialized and rendered as a deserialize("...") placeholder. All keyword
// arguments are serialized together and appended as a single trailing
// **deserialize("...") spread, present even when kwargs is empty or nil.
func Aggregate(args []any, kwargs map[string]any) (map[string]struct{}, []string, error) {
	argStrings := make([]string, 0, len(args)+1)
	modules := make(map[string]struct{})

	for _, arg := range args {
		if ce, ok := arg.(*CallExpression); ok {
			for m := range ce.moduleSet() {
				modules[m] = struct{}{}
			}
			argStrings = append(argStrings, ce.CallString())
			continue
		}

		literal, err := codec.EncodeLiteral(arg)
		if err != nil {
			return nil, nil, err
		}
		argStrings = append(argStrings, `deserialize("`+literal+`")`)
	}

	if kwargs == nil {
		kwargs = map[string]any{}
	}
	literal, err := codec.EncodeLiteral(kwargs)
	if err != nil {
		return nil, nil, err
	}
	argStrings = append(argStrings, `**deserialize("`+literal+`")`)

	return modules, argStrings, nil
}
