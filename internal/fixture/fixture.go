package fixture

import (
	"fmt"

	"github.com/funvibe/hostbridge/internal/expr"
)

// BadArgumentError reports that a fixture was invoked outside the host
// with an argument that is not itself a fixture-produced call expression.
// It is raised at expression-build time, before any subprocess exists.
type BadArgumentError struct {
	Fixture string
	Index   int
	Value   any
}

func (e *BadArgumentError) Error() string {
	return fmt.Sprintf("fixture %s: argument %d is %T, not a fixture expression",
		e.Fixture, e.Index, e.Value)
}

// Definition is the outer-process view of a fixture: enough identity to
// build call expressions that reference it. The fixture body never runs
// through a Definition.
type Definition struct {
	Module string
	Name   string
}

// Expr validates that every dependency is a fixture-produced call
// expression and builds the expression "call this fixture with these
// upstream expressions as arguments".
func (d *Definition) Expr(deps ...any) (*expr.CallExpression, error) {
	args := make([]*expr.CallExpression, len(deps))
	for i, dep := range deps {
		ce, ok := dep.(*expr.CallExpression)
		if !ok {
			return nil, &BadArgumentError{Fixture: d.Name, Index: i, Value: dep}
		}
		args[i] = ce
	}
	return expr.BuildNamed(d.Module, d.Name, args), nil
}
