// Package sqlite implements the archive.sqlite module: a permanent
// append-only conversation transcript in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"

	"github.com/aikodesk/aiko/internal/archive"
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
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module wires the SQLite transcript archive into the module system.
type Module struct {
	config Config
	logger *slog.Logger
	store  archive.Store
	db     *sql.DB
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "archive.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return err
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. Opens the database and publishes
// the archive store for the assistant and gateway to resolve.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	path := m.config.Path
	if path == "" {
		path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	store, db, err := OpenStore(path, m.config.BusyTimeout)
	if err != nil {
		return err
	}
	m.store = store
	m.db = db

	m.logger.Info("transcript archive opened", "path", path)
	ctx.RegisterService("archive.store", store)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Start implements core.Starter.
func (m *Module) Start() error {
	return m.db.Ping()
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
