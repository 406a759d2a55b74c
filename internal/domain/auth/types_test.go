package auth

import (
	"testing"
	"time"
)

func TestParseScheme(t *testing.T) {
	if got := ParseScheme("bearer"); got != SchemeBearer {
		t.Fatalf("expected bearer, got %q", got)
	}
	if got := ParseScheme(" BASIC "); got != SchemeBasic {
		t.Fatalf("expected basic, got %q", got)
	}
	if got := ParseScheme("digest"); got != SchemeBasic {
		t.Fatalf("unknown scheme should fall back to basic, got %q", got)
	}
}

func TestCredential_IsZeroAndExpired(t *testing.T) {
	if !(Credential{Token: "  "}).IsZero() {
		t.Fatalf("blank token should be zero")
	}
	now := time.Now()
	c := Credential{Token: "t", ExpiresAt: now.Add(-time.Second)}
	if !c.Expired(now) {
		t.Fatalf("expected expired credential")
	}
	if (Credential{Token: "t"}).Expired(now) {
		t.Fatalf("credential without expiry never expires")
	}
}

func TestBasicToken(t *testing.T) {
	if got := BasicToken("alice", "s3cret"); got != "YWxpY2U6czNjcmV0" {
		t.Fatalf("unexpected token %q", got)
	}
}
