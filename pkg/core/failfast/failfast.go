// Package failfast turns programming errors into immediate panics and
// turns recovered panics back into errors.
package failfast

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrFailFast is wrapped by every panic raised from this package
var ErrFailFast = errors.New("fail-fast")

// If panics if condition is false
func If(condition bool, message string, args ...interface{}) {
	if !condition {
		panic(fmt.Errorf("%w: %s", ErrFailFast, fmt.Sprintf(message, args...)))
	}
}

// NotNil panics if v is nil, a typed nil pointer or a nil func
func NotNil(v interface{}, name string) {
	if v == nil {
		panic(fmt.Errorf("%w: %s is nil", ErrFailFast, name))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Func:
		if rv.IsNil() {
			panic(fmt.Errorf("%w: %s is nil", ErrFailFast, name))
		}
	}
}

// Recovered converts a value returned by recover() into an error
// Errors are returned as is so callers can still match them with errors.Is
func Recovered(r interface{}) error {
	switch v := r.(type) {
	case nil:
		return nil
	case error:
		return v
	case string:
		return errors.New(v)
	default:
		return fmt.Errorf("%v", v)
	}
}
