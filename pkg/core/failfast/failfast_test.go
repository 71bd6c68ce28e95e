package failfast

import (
	"errors"
	"testing"
)

// mustPanic runs fn and returns the recovered value as an error
func mustPanic(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic, got none")
		}
		var ok bool
		err, ok = r.(error)
		if !ok {
			t.Fatalf("Expected error type, got: %T", r)
		}
	}()
	fn()
	return nil
}

func TestIf(t *testing.T) {
	If(true, "should not panic")

	err := mustPanic(t, func() { If(false, "value is %d", 42) })
	expected := "fail-fast: value is 42"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestNotNil(t *testing.T) {
	var nilPtr *int
	var nilFunc func()

	NotNil(1, "int")
	NotNil(func() {}, "func")

	for name, v := range map[string]interface{}{
		"untyped": nil,
		"ptr":     nilPtr,
		"func":    nilFunc,
	} {
		err := mustPanic(t, func() { NotNil(v, name) })
		if err.Error() != "fail-fast: "+name+" is nil" {
			t.Errorf("NotNil(%s) panic = %q", name, err.Error())
		}
	}
}

func TestRecovered(t *testing.T) {
	sentinel := errors.New("sentinel")

	if err := Recovered(nil); err != nil {
		t.Errorf("Recovered(nil) = %v, want nil", err)
	}
	if err := Recovered(sentinel); !errors.Is(err, sentinel) {
		t.Errorf("Recovered(error) = %v, want sentinel", err)
	}
	if err := Recovered("bad thing"); err == nil || err.Error() != "bad thing" {
		t.Errorf("Recovered(string) = %v", err)
	}
	if err := Recovered(42); err == nil || err.Error() != "42" {
		t.Errorf("Recovered(int) = %v", err)
	}
}
