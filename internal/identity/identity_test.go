package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskboard/taskboard/internal/taskerr"
)

func signToken(t *testing.T, secret, userID, name string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestSessionResolver(t *testing.T) {
	resolver := NewSessionResolver("s3cret")
	ctx := context.Background()

	p, err := resolver.Resolve(ctx, signToken(t, "s3cret", "u-42", "Jordan"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.UserID != "u-42" || p.DisplayName != "Jordan" {
		t.Errorf("unexpected principal: %+v", p)
	}
}

func TestSessionResolverRejectsBadTokens(t *testing.T) {
	resolver := NewSessionResolver("s3cret")
	ctx := context.Background()

	cases := map[string]string{
		"empty credential": "",
		"garbage":          "not-a-token",
		"wrong secret":     signToken(t, "other-secret", "u-42", "Jordan"),
		"missing subject":  signToken(t, "s3cret", "", "Jordan"),
		"missing name":     signToken(t, "s3cret", "u-42", ""),
	}

	for label, credential := range cases {
		if _, err := resolver.Resolve(ctx, credential); !errors.Is(err, taskerr.ErrInvalidCredentials) {
			t.Errorf("%s: expected invalid-credentials error, got %v", label, err)
		}
	}
}

func TestDemoResolver(t *testing.T) {
	resolver := NewDemoResolver()
	ctx := context.Background()

	p, err := resolver.Resolve(ctx, "demo-designer")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.UserID == "" || p.DisplayName == "" {
		t.Errorf("demo principal incomplete: %+v", p)
	}

	if _, err := resolver.Resolve(ctx, "nobody"); !errors.Is(err, taskerr.ErrInvalidCredentials) {
		t.Errorf("unknown demo credential should fail, got %v", err)
	}
}
