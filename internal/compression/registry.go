package compression

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewJobID hands out a process-unique, never-reused job identifier. The
// millisecond prefix keeps ids roughly sortable; the uuid suffix makes
// collisions between concurrent submissions impossible.
func NewJobID() string {
	return fmt.Sprintf("cmp-%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}
