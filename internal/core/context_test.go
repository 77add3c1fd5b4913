package core

import (
	"errors"
	"log/slog"
	"testing"

	"gopkg.in/yaml.v3"
)

// fakeModule records which lifecycle phases ran.
type fakeModule struct {
	id           string
	configured   bool
	provisioned  bool
	validated    bool
	configureErr error
	provisionErr error
	validateErr  error
	node         *yaml.Node
}

func (f *fakeModule) ModuleInfo() ModuleInfo {
	return ModuleInfo{
		ID:  ModuleID(f.id),
		New: func() Module { return f },
	}
}

func (f *fakeModule) Configure(node *yaml.Node) error {
	f.configured = true
	f.node = node
	return f.configureErr
}

func (f *fakeModule) Provision(_ *AppContext) error {
	f.provisioned = true
	return f.provisionErr
}

func (f *fakeModule) Validate() error {
	f.validated = true
	return f.validateErr
}

func newTestContext() *AppContext {
	return NewAppContext(slog.Default(), "")
}

func TestRegisterAndGetModule(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	RegisterModule(&fakeModule{id: "test.one"})
	RegisterModule(&fakeModule{id: "test.two"})

	if _, ok := GetModule("test.one"); !ok {
		t.Fatal("GetModule(test.one): not found")
	}
	if _, ok := GetModule("test.missing"); ok {
		t.Fatal("GetModule(test.missing): unexpectedly found")
	}

	mods := GetModules()
	if len(mods) != 2 {
		t.Fatalf("GetModules: got %d modules, want 2", len(mods))
	}
	if mods[0].ID != "test.one" || mods[1].ID != "test.two" {
		t.Errorf("GetModules not sorted by ID: %v, %v", mods[0].ID, mods[1].ID)
	}
}

func TestRegisterModuleDuplicatePanics(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	RegisterModule(&fakeModule{id: "test.dup"})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterModule(&fakeModule{id: "test.dup"})
}

func TestLoadModuleLifecycle(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	mod := &fakeModule{id: "test.lifecycle"}
	RegisterModule(mod)

	var node yaml.Node
	if err := yaml.Unmarshal([]byte("key: value"), &node); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}

	ctx := newTestContext().WithModuleConfigs(map[string]yaml.Node{
		"test.lifecycle": node,
	})

	loaded, err := ctx.LoadModule("test.lifecycle")
	if err != nil {
		t.Fatalf("LoadModule: unexpected error: %v", err)
	}
	if loaded != Module(mod) {
		t.Fatal("LoadModule returned a different instance")
	}
	if !mod.configured || !mod.provisioned || !mod.validated {
		t.Errorf("lifecycle incomplete: configured=%v provisioned=%v validated=%v",
			mod.configured, mod.provisioned, mod.validated)
	}
	if mod.node == nil {
		t.Error("Configure did not receive the config node")
	}
}

func TestLoadModuleValidateFailure(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	wantErr := errors.New("bad config")
	RegisterModule(&fakeModule{id: "test.invalid", validateErr: wantErr})

	_, err := newTestContext().LoadModule("test.invalid")
	if !errors.Is(err, wantErr) {
		t.Fatalf("LoadModule error = %v, want wrapped %v", err, wantErr)
	}
}

func TestLoadModuleUnknown(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	if _, err := newTestContext().LoadModule("test.nope"); err == nil {
		t.Fatal("LoadModule(unknown): expected error")
	}
}

func TestServiceRegistrySharedAcrossScopes(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	scoped := ctx.ForModule("test.scope")

	scoped.RegisterService("answer", 42)

	svc, ok := ctx.Service("answer")
	if !ok {
		t.Fatal("Service(answer): not found from parent scope")
	}
	if svc.(int) != 42 {
		t.Errorf("Service(answer) = %v, want 42", svc)
	}

	if _, ok := ctx.Service("missing"); ok {
		t.Error("Service(missing): unexpectedly found")
	}
}
