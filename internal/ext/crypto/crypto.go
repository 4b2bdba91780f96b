// Package crypto provides the "crypto" extension module: bcrypt password
// hashing, HS256 JSON web tokens and SHA-256 digests.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ecp/internal/runtime"
)

func init() {
	runtime.RegisterExtension("crypto", New)
}

// New builds the crypto module.
func New(*runtime.Interpreter) (*runtime.BuiltinModule, error) {
	return runtime.NewBuiltinModule("crypto").
		Func("hash_password", hashPassword).
		Func("verify_password", verifyPassword).
		Func("sign_token", signToken).
		Func("verify_token", verifyToken).
		Func("sha256", digest), nil
}

func stringArg(fn string, args []runtime.Value, idx int) (string, error) {
	s, ok := args[idx].(runtime.StringVal)
	if !ok {
		return "", runtime.TypeErrorf("%s() argument %d must be a String, not '%s'", fn, idx+1, args[idx].TypeName())
	}
	return string(s), nil
}

// hashPassword is hash_password(password[, cost]).
func hashPassword(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("hash_password", args, 1, 2); err != nil {
		return nil, err
	}
	password, err := stringArg("hash_password", args, 0)
	if err != nil {
		return nil, err
	}
	cost := bcrypt.DefaultCost
	if len(args) == 2 {
		n, ok := args[1].(runtime.IntVal)
		if !ok || n < runtime.IntVal(bcrypt.MinCost) || n > runtime.IntVal(bcrypt.MaxCost) {
			return nil, runtime.ValueErrorf("hash_password() cost must be an Int between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
		cost = int(n)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, runtime.ValueErrorf("hash_password() password is longer than 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("hash_password: %w", err)
	}
	return string(hash), nil
}

// verifyPassword is verify_password(password, hash). A malformed hash is an
// error, a wrong password is False.
func verifyPassword(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("verify_password", args, 2, 2); err != nil {
		return nil, err
	}
	password, err := stringArg("verify_password", args, 0)
	if err != nil {
		return nil, err
	}
	hash, err := stringArg("verify_password", args, 1)
	if err != nil {
		return nil, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return nil, runtime.ValueErrorf("verify_password() invalid hash: %s", err)
	}
}

// signToken is sign_token(claims, secret[, seconds]). With seconds the token
// gets an exp claim that many seconds from now.
func signToken(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("sign_token", args, 2, 3); err != nil {
		return nil, err
	}
	payload, ok := runtime.Unbox(args[0]).(map[string]any)
	if !ok {
		return nil, runtime.TypeErrorf("sign_token() claims must be a Dictionary, not '%s'", args[0].TypeName())
	}
	secret, err := stringArg("sign_token", args, 1)
	if err != nil {
		return nil, err
	}
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	if len(args) == 3 {
		secs, ok := args[2].(runtime.IntVal)
		if !ok {
			return nil, runtime.TypeErrorf("sign_token() lifetime must be an Int number of seconds")
		}
		claims["exp"] = time.Now().Add(time.Duration(secs) * time.Second).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("sign_token: %w", err)
	}
	return signed, nil
}

// verifyToken is verify_token(token, secret). It returns the claims, or None
// when the token is malformed, expired or signed with another secret.
func verifyToken(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("verify_token", args, 2, 2); err != nil {
		return nil, err
	}
	raw, err := stringArg("verify_token", args, 0)
	if err != nil {
		return nil, err
	}
	secret, err := stringArg("verify_token", args, 1)
	if err != nil {
		return nil, err
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}
	return map[string]any(claims), nil
}

func digest(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("sha256", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := stringArg("sha256", args, 0)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}
