// Package assert provides the in-host assertion helpers.
//
// These run inside the host process where no *testing.T exists; a failed
// assertion panics with a Failure, which the dispatcher formats into the
// error block of the stdout protocol. The set is enumerated on purpose:
// the public surface is statically known.
package assert

import (
	"fmt"
	"reflect"
	"strings"
)

// Failure is the panic value raised by a failed assertion.
type Failure struct {
	Msg string
}

func (f Failure) Error() string {
	return f.Msg
}

// Fail raises an assertion failure with a formatted message.
func Fail(format string, args ...any) {
	panic(Failure{Msg: fmt.Sprintf(format, args...)})
}

// Equal asserts got and want are deeply equal.
func Equal(got, want any) {
	if !reflect.DeepEqual(got, want) {
		Fail("assert.Equal: got %#v, want %#v", got, want)
	}
}

// NotEqual asserts got and want are not deeply equal.
func NotEqual(got, want any) {
	if reflect.DeepEqual(got, want) {
		Fail("assert.NotEqual: both values are %#v", got)
	}
}

// True asserts cond.
func True(cond bool) {
	if !cond {
		Fail("assert.True: condition is false")
	}
}

// False asserts !cond.
func False(cond bool) {
	if cond {
		Fail("assert.False: condition is true")
	}
}

// Nil asserts v is nil (untyped or a nil pointer/slice/map/chan/func).
func Nil(v any) {
	if !isNil(v) {
		Fail("assert.Nil: got %#v", v)
	}
}

// NotNil asserts v is not nil.
func NotNil(v any) {
	if isNil(v) {
		Fail("assert.NotNil: got nil")
	}
}

// NoError asserts err is nil.
func NoError(err error) {
	if err != nil {
		Fail("assert.NoError: %v", err)
	}
}

// Contains asserts sub occurs within s.
func Contains(s, sub string) {
	if !strings.Contains(s, sub) {
		Fail("assert.Contains: %q does not contain %q", s, sub)
	}
}

// Len asserts v has length n. v must be a string, slice, array, map or
// channel.
func Len(v any, n int) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		if rv.Len() != n {
			Fail("assert.Len: got length %d, want %d", rv.Len(), n)
		}
	default:
		Fail("assert.Len: %T has no length", v)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
