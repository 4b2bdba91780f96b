// Package system provides the "system" extension module: wall clock,
// environment and platform queries.
package system

import (
	"os"
	goruntime "runtime"
	"time"

	"ecp/internal/runtime"
)

func init() {
	runtime.RegisterExtension("system", New)
}

// Clock returns the current time. Tests replace it.
var Clock = time.Now

// New builds the system module.
func New(*runtime.Interpreter) (*runtime.BuiltinModule, error) {
	return runtime.NewBuiltinModule("system").
		Const("os", runtime.StringVal(goruntime.GOOS)).
		Func("time", func(args []runtime.Value) (any, error) {
			if err := runtime.CheckArgs("time", args, 0, 0); err != nil {
				return nil, err
			}
			return float64(Clock().UnixNano()) / 1e9, nil
		}).
		Func("now", func(args []runtime.Value) (any, error) {
			if err := runtime.CheckArgs("now", args, 0, 0); err != nil {
				return nil, err
			}
			return Clock().Format(time.RFC3339), nil
		}).
		Func("env", env).
		Func("platform", func(args []runtime.Value) (any, error) {
			if err := runtime.CheckArgs("platform", args, 0, 0); err != nil {
				return nil, err
			}
			return goruntime.GOOS + "/" + goruntime.GOARCH, nil
		}).
		Func("sleep", sleep), nil
}

// env returns the variable's value, the default when it is unset, or None.
func env(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("env", args, 1, 2); err != nil {
		return nil, err
	}
	name, ok := args[0].(runtime.StringVal)
	if !ok {
		return nil, runtime.TypeErrorf("env() name must be a String, not '%s'", args[0].TypeName())
	}
	if v, found := os.LookupEnv(string(name)); found {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return nil, nil
}

func sleep(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("sleep", args, 1, 1); err != nil {
		return nil, err
	}
	secs, ok := runtime.ToFloat64(args[0])
	if !ok {
		return nil, runtime.TypeErrorf("sleep() argument must be a number, not '%s'", args[0].TypeName())
	}
	if secs < 0 {
		return nil, runtime.ValueErrorf("sleep length must be non-negative")
	}
	time.Sleep(time.Duration(secs * float64(time.Second)))
	return nil, nil
}
