package app

import (
	"github.com/specialistvlad/previewgo/internal/registry"
	"github.com/specialistvlad/previewgo/modules/backgrounds"
	"github.com/specialistvlad/previewgo/modules/env_vars"
	"github.com/specialistvlad/previewgo/modules/layout"
	"github.com/specialistvlad/previewgo/modules/print"
)

// coreAddons is the definitive list of all addons that are compiled into
// the previewgo binary. Decorators registered earlier wrap closer to the
// story.
var coreAddons = []registry.Addon{
	&print.Module{},
	&layout.Module{},
	&backgrounds.Module{},
	&env_vars.Module{},
}
