package middleware

import "testing"

func TestBlacklistKey(t *testing.T) {
	if got := BlacklistKey("abc.def.ghi"); got != "blacklist:jwt:abc.def.ghi" {
		t.Fatalf("unexpected blacklist key %q", got)
	}
}

func TestTokenBlacklistedFailsOpenWithoutRedis(t *testing.T) {
	// Redis is not configured in tests; revocation must not lock everyone out.
	if tokenBlacklisted("abc.def.ghi") {
		t.Fatalf("expected token to pass when Redis is unavailable")
	}
}
