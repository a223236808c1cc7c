package compression

import "github.com/pkg/errors"

// ErrServerBusy is returned by the submission gate when host CPU usage is
// above the configured ceiling. Maps to 503 at the delivery layer.
var ErrServerBusy = errors.New("server is busy, try again later")
