package stdlib

import (
	"bytes"
	"reflect"
	"testing"

	"ecp/internal/runtime"
)

func run(t *testing.T, source string) string {
	t.Helper()
	var buf bytes.Buffer
	interp := runtime.NewInterpreter(
		runtime.WithOutput(&buf),
		runtime.WithDir(t.TempDir()),
		runtime.WithStdlib(FS),
	)
	if _, err := interp.RunSource(source); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return buf.String()
}

func TestModules(t *testing.T) {
	if got := Modules(); !reflect.DeepEqual(got, []string{"collections", "strings"}) {
		t.Errorf("Modules() = %v", got)
	}
}

func TestStack(t *testing.T) {
	got := run(t, `
IMPORT "collections"
s ← collections.Stack()
other ← collections.Stack()
s.push(1)
s.push([2])
OUTPUT s, s.size(), other.is_empty()
OUTPUT s.pop(), s.peek(), s.pop(), s.pop(), s.is_empty()
`)
	want := "Stack([1, [2]]) 2 True\n[2] 1 1 None True\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestQueue(t *testing.T) {
	got := run(t, `
IMPORT "collections" AS c
q ← c.Queue()
FOR i ← 1 TO 3
  q.enqueue(i * 10)
ENDFOR
OUTPUT q.dequeue(), q.peek(), q.size(), q
`)
	if want := "10 20 2 Queue([20, 30])\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`strings.JOIN(["a", 1, 2.5], ", ")`, "a, 1, 2.5"},
		{`strings.JOIN([], "-")`, ""},
		{`strings.SPLIT("a,b,,c", ",")`, "['a', 'b', '', 'c']"},
		{`strings.SPLIT("one<>two", "<>")`, "['one', 'two']"},
		{`strings.SPLIT("abc", "")`, "['a', 'b', 'c']"},
		{`strings.REPEAT_STRING("ab", 3)`, "ababab"},
		{`strings.REVERSE("héllo")`, "olléh"},
	}
	for _, tt := range tests {
		got := run(t, "IMPORT \"strings\"\nOUTPUT "+tt.expr)
		if got != tt.want+"\n" {
			t.Errorf("%s = %q, want %q", tt.expr, got, tt.want)
		}
	}
}
