package hsm

import (
	"fmt"
	"reflect"
)

// injector resolves, at callback invocation time, the arguments a user
// guard or action expects from a pool of externally supplied context
// values plus the current event.
type injector struct {
	pool map[reflect.Type]reflect.Value
}

func newInjector(context []any) (*injector, error) {
	pool := make(map[reflect.Type]reflect.Value, len(context))
	for _, v := range context {
		val := reflect.ValueOf(v)
		if !val.IsValid() {
			continue
		}
		t := val.Type()
		if _, dup := pool[t]; dup {
			return nil, &InjectionError{Func: "<context>", Param: t}
		}
		pool[t] = val
	}
	return &injector{pool: pool}, nil
}

// resolve returns the call arguments for fn's parameter list, searching
// the context pool and, if eventValue is valid, the current event's own
// type. Every parameter type must have exactly one candidate.
func (inj *injector) resolve(name string, fnType reflect.Type, eventValue reflect.Value) ([]reflect.Value, error) {
	args := make([]reflect.Value, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		paramType := fnType.In(i)
		candidate, ok := inj.candidateFor(paramType, eventValue)
		if !ok {
			return nil, &InjectionError{Func: name, Param: paramType}
		}
		args[i] = candidate
	}
	return args, nil
}

func (inj *injector) candidateFor(paramType reflect.Type, eventValue reflect.Value) (reflect.Value, bool) {
	if eventValue.IsValid() && eventValue.Type().AssignableTo(paramType) {
		return eventValue, true
	}
	if v, ok := inj.pool[paramType]; ok {
		return v, true
	}
	// Fall back to a single assignable match from the pool, so pointer
	// receivers and interface parameters still resolve.
	var match reflect.Value
	found := 0
	for t, v := range inj.pool {
		if t.AssignableTo(paramType) {
			match = v
			found++
		}
	}
	if found == 1 {
		return match, true
	}
	return reflect.Value{}, false
}

// validate checks, without invoking it, that fn's entire parameter list
// can be resolved from the context pool plus (if knownEventType is not
// nil) a zero value of that event type standing in for the eventual real
// event. It never reports success on an argument count mismatch.
func (inj *injector) validate(name string, fn any, knownEventType reflect.Type) error {
	if fn == nil {
		return nil
	}
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("hsm: %s is not a function: %w", name, ErrInjection)
	}
	if fnType.IsVariadic() {
		return fmt.Errorf("hsm: %s: variadic callbacks are not supported: %w", name, ErrInjection)
	}
	var probe reflect.Value
	if knownEventType != nil {
		probe = reflect.Zero(knownEventType)
	}
	_, err := inj.resolve(name, fnType, probe)
	return err
}

// invoke calls fn with arguments resolved from the pool and, when valid,
// the actual triggering event value.
func (inj *injector) invoke(name string, fn any, eventValue reflect.Value) ([]reflect.Value, error) {
	fnValue := reflect.ValueOf(fn)
	args, err := inj.resolve(name, fnValue.Type(), eventValue)
	if err != nil {
		return nil, err
	}
	return fnValue.Call(args), nil
}

// invokeGuard calls a guard callback and extracts its bool result. A nil
// guard is trivially true.
func (inj *injector) invokeGuard(name string, fn any, eventValue reflect.Value) (bool, error) {
	if fn == nil {
		return true, nil
	}
	results, err := inj.invoke(name, fn, eventValue)
	if err != nil {
		return false, err
	}
	if len(results) != 1 || results[0].Kind() != reflect.Bool {
		return false, fmt.Errorf("hsm: %s: guard must return exactly one bool", name)
	}
	return results[0].Bool(), nil
}

// invokeAction calls an action/entry/exit callback for its side effects.
// A nil action is a no-op.
func (inj *injector) invokeAction(name string, fn any, eventValue reflect.Value) error {
	if fn == nil {
		return nil
	}
	_, err := inj.invoke(name, fn, eventValue)
	return err
}
