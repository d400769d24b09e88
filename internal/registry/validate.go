package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/specialistvlad/previewgo/internal/story"
)

// Validate checks the whole table at once and reports every problem rather
// than the first one. Modules that produce no stories only get a warning.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	ids := r.sortedIDs()
	snapshot := make(map[story.ModuleID]story.Exports, len(ids))
	for _, id := range ids {
		snapshot[id] = r.exports[id]
	}
	r.mu.RUnlock()

	owners := make(map[story.ID]story.ModuleID)
	for _, id := range ids {
		mod, err := r.processor(id, snapshot[id])
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if len(mod.Stories) == 0 {
			logger.Warn("Story module declares no stories.", "module", id)
		}
		for _, a := range mod.Stories {
			if owner, dup := owners[a.ID]; dup {
				errs = append(errs, fmt.Sprintf("story id '%s' is declared by both '%s' and '%s'", a.ID, owner, id))
				continue
			}
			owners[a.ID] = id
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
