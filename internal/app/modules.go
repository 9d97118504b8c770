package app

import (
	"github.com/vk/lamphost/internal/config"
	"github.com/vk/lamphost/internal/managers/builtin"
	"github.com/vk/lamphost/internal/managers/disk"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/vk/lamphost/modules/core"
	"github.com/vk/lamphost/modules/motd"
	"github.com/vk/lamphost/modules/print"
)

// BuiltinManagerName is the name of the manager serving compiled-in plugins.
const BuiltinManagerName = "builtin"

// coreModules is the definitive list of plugins compiled into the lamphost
// binary.
var coreModules = []builtin.Definition{
	core.Definition(),
	motd.Definition(),
}

// entrypoints are the compiled handlers plugin.hcl manifests may bind to.
var entrypoints = disk.Factories{
	print.Entrypoint: print.Factory(nil),
}

func defaultManagers(cfg *config.Config) []plugin.Manager {
	return []plugin.Manager{
		builtin.New(BuiltinManagerName, coreModules...),
		disk.New(cfg.PluginsPath, entrypoints),
	}
}
