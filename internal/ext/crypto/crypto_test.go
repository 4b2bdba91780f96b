package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"ecp/internal/runtime"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	interp := runtime.NewInterpreter(runtime.WithOutput(&buf), runtime.WithDir(t.TempDir()))
	_, err := interp.RunSource("IMPORT \"crypto\"\n" + source)
	return strings.TrimSuffix(buf.String(), "\n"), err
}

func expect(t *testing.T, source, want string) {
	t.Helper()
	got, err := run(t, source)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSHA256(t *testing.T) {
	expect(t, `OUTPUT crypto.sha256("abc")`,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
}

func TestPasswords(t *testing.T) {
	expect(t, `
h ← crypto.hash_password("s3cret", 4)
OUTPUT LEN(h), POSITION(h, "$2a$04$")
OUTPUT crypto.verify_password("s3cret", h), crypto.verify_password("guess", h)
`, "60 0\nTrue False")
}

func TestPasswordErrors(t *testing.T) {
	tests := []struct {
		source string
		code   string
		msg    string
	}{
		{`crypto.verify_password("x", "not a hash")`, runtime.CodeValue, "invalid hash"},
		{`crypto.hash_password("x", 99)`, runtime.CodeValue, "cost must be an Int between 4 and 31"},
		{`crypto.hash_password(5)`, runtime.CodeType, "argument 1 must be a String, not 'Int'"},
	}
	for _, tt := range tests {
		_, err := run(t, tt.source)
		var re *runtime.RuntimeError
		if !errors.As(err, &re) {
			t.Errorf("%s: expected a runtime error, got %v", tt.source, err)
			continue
		}
		if re.Code != tt.code || !strings.Contains(re.Message, tt.msg) {
			t.Errorf("%s: got [%s] %s", tt.source, re.Code, re.Message)
		}
	}
}

func TestTokens(t *testing.T) {
	expect(t, `
tok ← crypto.sign_token({"sub": "ada", "admin": True, "roles": ["a", "b"]}, "key")
claims ← crypto.verify_token(tok, "key")
OUTPUT claims["sub"], claims["admin"], claims["roles"]
OUTPUT crypto.verify_token(tok, "wrong"), crypto.verify_token("junk", "key")
`, "ada True ['a', 'b']\nNone None")
}

func TestTokenExpiry(t *testing.T) {
	expect(t, `
fresh ← crypto.sign_token({"sub": "x"}, "key", 60)
stale ← crypto.sign_token({"sub": "x"}, "key", -60)
OUTPUT crypto.verify_token(fresh, "key").has("exp"), crypto.verify_token(stale, "key")
`, "True None")
}

func TestTokenClaimsMustBeDictionary(t *testing.T) {
	_, err := run(t, `crypto.sign_token([1], "key")`)
	var re *runtime.RuntimeError
	if !errors.As(err, &re) || re.Code != runtime.CodeType {
		t.Errorf("expected a type error, got %v", err)
	}
}
