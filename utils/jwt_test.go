package utils

import (
	"context"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := GenerateToken(42, "alice", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	anonymous, err := GenerateToken(0, "", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for name, tok := range map[string]string{
		"expired":   expired,
		"no user":   anonymous,
		"garbage":   "not.a.jwt",
		"truncated": expired[:len(expired)-4],
	} {
		if _, err := ParseToken(tok); err == nil {
			t.Errorf("%s token accepted", name)
		}
	}
}

func TestRedisDisabledMeansNoCacheOrRevocation(t *testing.T) {
	ctx := context.Background()
	if GetRedis() != nil {
		t.Fatal("redis client built while disabled")
	}
	CacheSetJSON(ctx, CacheKeySettings, map[string]int{"a": 1}, 0)
	var out map[string]int
	if CacheGetJSON(ctx, CacheKeySettings, &out) {
		t.Fatal("cache hit without redis")
	}
	if IsTokenRevoked(ctx, "anything") {
		t.Fatal("token revoked without redis")
	}
}
