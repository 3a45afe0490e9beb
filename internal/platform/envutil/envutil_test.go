package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("PB_TEST_INT", "abc")
	if got := Int("PB_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("PB_TEST_INT", " 42 ")
	if got := Int("PB_TEST_INT", 7); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("PB_TEST_DUR", "90")
	if got := Duration("PB_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("Duration seconds: got=%s", got)
	}
	t.Setenv("PB_TEST_DUR", "24h")
	if got := Duration("PB_TEST_DUR", time.Minute); got != 24*time.Hour {
		t.Fatalf("Duration go syntax: got=%s", got)
	}
	t.Setenv("PB_TEST_DUR", "soon")
	if got := Duration("PB_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("Duration fallback: got=%s", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("PB_TEST_BOOL", "off")
	if Bool("PB_TEST_BOOL", true) {
		t.Fatalf("Bool: want false")
	}
	t.Setenv("PB_TEST_LIST", " http://a , ,http://b")
	got := List("PB_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("List: got=%v", got)
	}
}
