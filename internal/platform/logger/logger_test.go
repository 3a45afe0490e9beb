package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValueRedactsSecrets(t *testing.T) {
	for _, key := range []string{"authorization", "gcs_api_key", "redis_password", "access_token"} {
		if got := sanitizeValue(key, "value"); got != "[REDACTED]" {
			t.Fatalf("sanitizeValue(%q): want redacted got=%v", key, got)
		}
	}
}

func TestSanitizeValueHashesIdempotencyKey(t *testing.T) {
	got, ok := sanitizeValue("idempotency_key", "ci-build-42").(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("sanitizeValue: want hash prefix got=%v", got)
	}
	again := sanitizeValue("idempotency_key", "ci-build-42")
	if again != got {
		t.Fatalf("sanitizeValue: hash not stable: %v vs %v", got, again)
	}
}

func TestSanitizeValueLeavesOrdinaryFields(t *testing.T) {
	if got := sanitizeValue("screen_name", "Login"); got != "Login" {
		t.Fatalf("sanitizeValue: want passthrough got=%v", got)
	}
	nested, ok := sanitizeValue("metadata", map[string]interface{}{"branch": "main", "token": "x"}).(map[string]interface{})
	if !ok {
		t.Fatalf("sanitizeValue: want map")
	}
	if nested["branch"] != "main" || nested["token"] != "[REDACTED]" {
		t.Fatalf("sanitizeValue nested: got=%v", nested)
	}
}
