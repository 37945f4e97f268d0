package code

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	c := New()
	if len(c) != Length {
		t.Errorf("wrong length expected: %d got %d", Length, len(c))
	}
	for _, r := range c {
		if !strings.ContainsRune(letters, r) {
			t.Errorf("unexpected character %q in %q", r, c)
		}
	}
}

func TestNewVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[New()] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected different codes, got %v", seen)
	}
}
