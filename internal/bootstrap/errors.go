package bootstrap

import (
	"errors"

	"github.com/specialistvlad/previewgo/internal/registry"
)

// RemovedAPIError is returned by every member of a retired API.
type RemovedAPIError = registry.RemovedAPIError

// ErrInvalidReentry is returned by Configure when backward compatibility is
// requested.
var ErrInvalidReentry = errors.New("configure: backward compatibility was removed; call without WithBackwardCompatibility")
