package system

import (
	"bytes"
	"errors"
	goruntime "runtime"
	"strings"
	"testing"
	"time"

	"ecp/internal/runtime"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	interp := runtime.NewInterpreter(runtime.WithOutput(&buf), runtime.WithDir(t.TempDir()))
	_, err := interp.RunSource("IMPORT \"system\" AS sys\n" + source)
	return strings.TrimSuffix(buf.String(), "\n"), err
}

func TestClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 30, 0, 500_000_000, time.UTC)
	Clock = func() time.Time { return fixed }
	defer func() { Clock = time.Now }()

	got, err := run(t, "OUTPUT sys.now(), sys.time()")
	if err != nil {
		t.Fatal(err)
	}
	if want := "2024-03-01T12:30:00Z 1709296200.5"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("ECP_SYSTEM_TEST", "yes")
	got, err := run(t, `OUTPUT sys.env("ECP_SYSTEM_TEST"), sys.env("ECP_SYSTEM_UNSET_VAR"), sys.env("ECP_SYSTEM_UNSET_VAR", 7)`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "yes None 7" {
		t.Errorf("got %q", got)
	}
}

func TestPlatform(t *testing.T) {
	got, err := run(t, "OUTPUT sys.platform(), sys.os")
	if err != nil {
		t.Fatal(err)
	}
	want := goruntime.GOOS + "/" + goruntime.GOARCH + " " + goruntime.GOOS
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSleep(t *testing.T) {
	start := time.Now()
	if _, err := run(t, "sys.sleep(0.01)"); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("sleep returned early")
	}

	_, err := run(t, "sys.sleep(-1)")
	var re *runtime.RuntimeError
	if !errors.As(err, &re) || re.Code != runtime.CodeValue {
		t.Errorf("expected a value error, got %v", err)
	}
}
