package compression

import (
	"strings"
	"testing"
)

func TestNewJobIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewJobID()
		if !strings.HasPrefix(id, "cmp-") {
			t.Fatalf("unexpected id shape: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate job id: %s", id)
		}
		seen[id] = true
	}
}
