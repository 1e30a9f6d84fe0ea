package app

import (
	"github.com/specialistvlad/nastranwrap/internal/registry"
	"github.com/specialistvlad/nastranwrap/modules/bar25"
	"github.com/specialistvlad/nastranwrap/modules/bar3"
	"github.com/specialistvlad/nastranwrap/modules/blade"
	"github.com/specialistvlad/nastranwrap/modules/compplate"
	"github.com/specialistvlad/nastranwrap/modules/ring"
)

// coreModules is the definitive list of all models that are compiled into
// the nastranwrap binary.
var coreModules = []registry.Module{
	&bar3.Module{},
	&bar25.Module{},
	&blade.Module{},
	&compplate.Module{},
	&ring.Module{},
}
