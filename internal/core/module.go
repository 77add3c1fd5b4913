// Package core provides the module system foundation for aiko.
package core

// ModuleID uniquely identifies a module (e.g. "provider.openai").
type ModuleID string

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the module identifier used in configuration.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// Module is the minimal interface every module implements.
type Module interface {
	ModuleInfo() ModuleInfo
}
