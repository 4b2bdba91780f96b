package runtime

import (
	"math"
	"reflect"
	"testing"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{3, "3.0"},
		{-2.5, "-2.5"},
		{0.1, "0.1"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{1.5e300, "1.5e+300"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", `'abc'`},
		{"it's", `"it's"`},
		{`say "hi"`, `'say "hi"'`},
		{`both ' and "`, `'both \' and "'`},
		{"tab\there\n", `'tab\there\n'`},
		{"back\\slash", `'back\\slash'`},
		{"\x01", `'\x01'`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	rec := &RecordVal{Name: "P", Fields: []string{"x"}}
	tests := []struct {
		a, b Value
		want bool
	}{
		{IntVal(1), FloatVal(1), true},
		{IntVal(1), BoolVal(true), true},
		{StringVal("1"), IntVal(1), false},
		{None, None, true},
		{None, BoolVal(false), false},
		{NewArray(IntVal(1), NewArray(StringVal("a"))), NewArray(IntVal(1), NewArray(StringVal("a"))), true},
		{NewArray(IntVal(1)), NewArray(IntVal(1), IntVal(2)), false},
		{
			&RecordInstance{Record: rec, Fields: map[string]Value{"x": IntVal(1)}},
			&RecordInstance{Record: rec, Fields: map[string]Value{"x": IntVal(1)}},
			true,
		},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	d1, d2 := NewDict(), NewDict()
	d1.Set(StringVal("a"), IntVal(1))
	d1.Set(StringVal("b"), IntVal(2))
	d2.Set(StringVal("b"), IntVal(2))
	d2.Set(StringVal("a"), IntVal(1))
	if !Equal(d1, d2) {
		t.Error("dictionaries with the same entries should be equal regardless of order")
	}
}

func TestIsTruthy(t *testing.T) {
	falsy := []Value{None, BoolVal(false), IntVal(0), FloatVal(0), StringVal(""), NewArray(), NewDict()}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Errorf("%s %v should be falsy", v.TypeName(), v)
		}
	}
	truthy := []Value{BoolVal(true), IntVal(-1), FloatVal(0.5), StringVal("0"), NewArray(None)}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Errorf("%s %v should be truthy", v.TypeName(), v)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	inner := NewArray(IntVal(1))
	d := NewDict()
	d.Set(StringVal("k"), inner)
	orig := NewArray(inner, d)

	cp := Clone(orig).(*ArrayVal)
	cp.Elements[0].(*ArrayVal).Elements[0] = IntVal(99)
	v, _ := cp.Elements[1].(*DictVal).Get(StringVal("k"))
	v.(*ArrayVal).Elements = append(v.(*ArrayVal).Elements, IntVal(2))

	if got := orig.String(); got != "[[1], {'k': [1]}]" {
		t.Errorf("original changed through clone: %s", got)
	}
	if got := cp.String(); got != "[[99], {'k': [1, 2]}]" {
		t.Errorf("unexpected clone %s", got)
	}
}

func TestDictNumericKeys(t *testing.T) {
	d := NewDict()
	if err := d.Set(IntVal(1), StringVal("int")); err != nil {
		t.Fatal(err)
	}
	d.Set(FloatVal(1), StringVal("real"))
	d.Set(BoolVal(true), StringVal("bool"))
	d.Set(FloatVal(1.5), StringVal("half"))
	d.Set(None, StringVal("none"))

	if d.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d: %s", d.Len(), d)
	}
	if got := d.String(); got != "{1: 'bool', 1.5: 'half', None: 'none'}" {
		t.Errorf("unexpected dictionary %s", got)
	}
	if v, ok := d.Get(FloatVal(1)); !ok || v != StringVal("bool") {
		t.Errorf("lookup by 1.0 = %v, %v", v, ok)
	}
}

func TestDictUnhashable(t *testing.T) {
	d := NewDict()
	if err := d.Set(NewArray(), IntVal(1)); err == nil {
		t.Error("expected an error for an Array key")
	}
	if _, ok := d.Get(NewDict()); ok {
		t.Error("lookup with a Dictionary key should miss")
	}
}

func TestDictDelete(t *testing.T) {
	d := NewDict()
	for i, k := range []string{"a", "b", "c"} {
		d.Set(StringVal(k), IntVal(i))
	}
	if !d.Delete(StringVal("a")) {
		t.Fatal("expected a to be deleted")
	}
	if d.Delete(StringVal("a")) {
		t.Error("second delete should report false")
	}
	d.Set(StringVal("a"), IntVal(9))
	if got := d.String(); got != "{'b': 1, 'c': 2, 'a': 9}" {
		t.Errorf("unexpected order after delete: %s", got)
	}
	if v, _ := d.Get(StringVal("c")); v != IntVal(2) {
		t.Errorf("index broken after delete: c = %v", v)
	}
}

func TestBoxUnbox(t *testing.T) {
	v, err := Box(map[string]any{
		"name": "ada",
		"tags": []string{"x", "y"},
		"n":    uint8(3),
		"ok":   true,
		"none": nil,
		"list": []any{1.5, int32(2)},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "{'list': [1.5, 2], 'n': 3, 'name': 'ada', 'none': None, 'ok': True, 'tags': ['x', 'y']}"
	if got := v.String(); got != want {
		t.Errorf("Box produced %s\nwant %s", got, want)
	}

	back := Unbox(v)
	wantGo := map[string]any{
		"name": "ada",
		"tags": []any{"x", "y"},
		"n":    int64(3),
		"ok":   true,
		"none": nil,
		"list": []any{1.5, int64(2)},
	}
	if !reflect.DeepEqual(back, wantGo) {
		t.Errorf("Unbox = %#v\nwant %#v", back, wantGo)
	}

	if _, err := Box(struct{}{}); err == nil {
		t.Error("expected an error boxing a struct")
	}
	if _, err := Box(uint64(math.MaxUint64)); err == nil {
		t.Error("expected an error boxing a uint64 beyond the Int range")
	}
}

func TestBoxValueKeyedMaps(t *testing.T) {
	v, err := Box(map[Value]Value{IntVal(2): StringVal("b"), StringVal("a"): IntVal(1)})
	if err != nil {
		t.Fatal(err)
	}
	if got := v.String(); got != "{'a': 1, 2: 'b'}" {
		t.Errorf("Box produced %s", got)
	}

	v, err = Box(map[Value]any{None: []any{1}, BoolVal(true): "yes"})
	if err != nil {
		t.Fatal(err)
	}
	if got := v.String(); got != "{None: [1], True: 'yes'}" {
		t.Errorf("Box produced %s", got)
	}

	if _, err := Box(map[Value]any{NewArray(): 1}); err == nil {
		t.Error("expected an error for an Array key")
	}
}

func TestEqualLargeInts(t *testing.T) {
	if Equal(IntVal(9007199254740993), IntVal(9007199254740992)) {
		t.Error("distinct Ints above 2**53 compared equal")
	}
	if !Equal(IntVal(1), BoolVal(true)) || !Equal(FloatVal(2), IntVal(2)) {
		t.Error("numeric equality across kinds broken")
	}
}

func TestToInt64(t *testing.T) {
	if n, ok := ToInt64(FloatVal(3)); !ok || n != 3 {
		t.Errorf("ToInt64(3.0) = %d, %v", n, ok)
	}
	if _, ok := ToInt64(FloatVal(3.5)); ok {
		t.Error("ToInt64(3.5) should fail")
	}
	if n, ok := ToInt64(BoolVal(true)); !ok || n != 1 {
		t.Errorf("ToInt64(True) = %d, %v", n, ok)
	}
	if _, ok := ToInt64(StringVal("3")); ok {
		t.Error("ToInt64 should not parse strings")
	}
}

func TestScope(t *testing.T) {
	var events []string
	global := NewScope("global", nil)
	global.SetObserver(func(name string, v Value) { events = append(events, name) })
	global.Define("PI", FloatVal(3.14), true)
	global.Define("x", IntVal(1), false)

	local := NewScope("f", global)
	local.Define("y", IntVal(2), false)

	if v, ok := local.Get("x"); !ok || v != IntVal(1) {
		t.Errorf("local should see x, got %v", v)
	}
	if local.Lookup("x") != global || local.Lookup("y") != local || local.Lookup("z") != nil {
		t.Error("Lookup returned the wrong scope")
	}
	if err := global.Set("PI", IntVal(3)); err == nil {
		t.Error("expected an error assigning a constant")
	}
	if !global.IsConstant("PI") || local.IsConstant("PI") {
		t.Error("IsConstant should consult only the scope itself")
	}
	// A local binding may shadow an outer constant.
	if err := local.Set("PI", IntVal(3)); err != nil {
		t.Errorf("shadowing failed: %v", err)
	}

	if got := local.Names(); !reflect.DeepEqual(got, []string{"PI", "x", "y"}) {
		t.Errorf("Names = %v", got)
	}
	if got := local.Bindings(); !reflect.DeepEqual(got, []string{"PI", "y"}) {
		t.Errorf("Bindings = %v", got)
	}

	local.Touch("x")
	// The child scope inherited the observer.
	want := []string{"PI", "x", "y", "PI", "x"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("observer events = %v, want %v", events, want)
	}
}
