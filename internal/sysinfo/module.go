package sysinfo

import (
	"fmt"
	"os"

	"github.com/aikodesk/aiko/internal/core"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// Config holds the system introspection module configuration.
type Config struct {
	// DiskPath is the mount point whose usage is reported. Defaults to "/".
	DiskPath string `yaml:"disk_path"`
}

// Module wires host introspection into the module system.
type Module struct {
	config  Config
	service *Service
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "sysinfo",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	return node.Decode(&m.config)
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.service = NewService(ctx.Logger, m.config.DiskPath)
	ctx.RegisterService("sysinfo", m.service)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.DiskPath == "" {
		return nil
	}
	if _, err := os.Stat(m.config.DiskPath); err != nil {
		return fmt.Errorf("sysinfo: disk_path %q: %w", m.config.DiskPath, err)
	}
	return nil
}
