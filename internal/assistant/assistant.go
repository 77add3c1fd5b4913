// Package assistant implements the assistant module: the conversation
// orchestrator, the shared emotional-state holder, and the background
// voice-capture loop.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aikodesk/aiko/internal/archive"
	"github.com/aikodesk/aiko/internal/cache"
	"github.com/aikodesk/aiko/internal/conversation"
	"github.com/aikodesk/aiko/internal/core"
	"github.com/aikodesk/aiko/internal/provider"
	"github.com/aikodesk/aiko/internal/schedule"
	"github.com/aikodesk/aiko/internal/sentiment"
	"github.com/aikodesk/aiko/internal/speech"
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

// Module wires the orchestrator into the module system.
type Module struct {
	config    Config
	logger    *slog.Logger
	appCtx    *core.AppContext
	orch      *Orchestrator
	voice     *VoiceController
	scheduler *schedule.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "assistant",
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

// Provision implements core.Provisioner. Builds the orchestrator and its
// owned collaborators and publishes them; the completion backend and the
// optional speech, archive, and metrics services are resolved at Start,
// after every module has provisioned.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	m.appCtx = ctx

	if m.config.CachePath == "" {
		m.config.CachePath = filepath.Join(ctx.DataDir, defaultCacheFile)
	}
	if m.config.HistoryPath == "" {
		m.config.HistoryPath = filepath.Join(ctx.DataDir, defaultHistoryFile)
	}

	m.orch = NewOrchestrator(OrchestratorDeps{
		Store:        conversation.NewStore(m.config.MaxExchanges),
		Cache:        cache.New(m.config.CachePath, cache.WithLogger(m.logger)),
		Classifier:   sentiment.NewClassifier(),
		State:        NewStateHolder(),
		Logger:       m.logger,
		SystemPrompt: m.config.SystemPrompt,
		MaxExchanges: m.config.MaxExchanges,
		KeyExchanges: m.config.KeyExchanges,
		HistoryPath:  m.config.HistoryPath,
	})
	m.voice = NewVoiceController(m.orch, m.logger, m.config.listenTimeout(), m.config.phraseLimit())

	ctx.RegisterService("assistant.orchestrator", m.orch)
	ctx.RegisterService("assistant.voice", m.voice)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Start implements core.Starter. Resolves collaborators from the service
// registry and optionally restores history and starts the autosave job.
func (m *Module) Start() error {
	svc, ok := m.appCtx.Service(m.config.Provider)
	if !ok {
		return fmt.Errorf("assistant: completion provider %q not found; is its module configured?", m.config.Provider)
	}
	completer, ok := svc.(provider.Completer)
	if !ok {
		return fmt.Errorf("assistant: service %q does not provide completions", m.config.Provider)
	}
	m.orch.SetCompleter(completer)

	if svc, ok := m.appCtx.Service("speech.speaker"); ok {
		if speaker, ok := svc.(speech.Speaker); ok {
			m.orch.SetSpeaker(speaker)
			m.applyVolume(speaker)
		}
	}
	if svc, ok := m.appCtx.Service("speech.listener"); ok {
		if listener, ok := svc.(speech.Listener); ok {
			m.voice.SetListener(listener)
		}
	}
	if svc, ok := m.appCtx.Service("archive.store"); ok {
		if store, ok := svc.(archive.Store); ok {
			m.orch.SetArchive(store)
		}
	}
	if svc, ok := m.appCtx.Service("gateway.metrics"); ok {
		if rec, ok := svc.(MetricsRecorder); ok {
			m.orch.SetMetrics(rec)
		}
	}

	if m.config.RestoreOnStart {
		if err := m.orch.LoadHistory(); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				m.logger.Info("no history file to restore", "path", m.config.HistoryPath)
			} else {
				return err
			}
		} else {
			m.logger.Info("history restored",
				"path", m.config.HistoryPath,
				"turns", m.orch.HistoryLen(),
			)
		}
	}

	if m.config.AutosaveSchedule != "" {
		m.scheduler = schedule.NewScheduler(m.logger)
		if err := m.scheduler.RegisterJob(&schedule.HistoryAutosaveJob{
			Saver:        m.orch,
			Logger:       m.logger,
			ScheduleExpr: m.config.AutosaveSchedule,
		}); err != nil {
			return err
		}
		if err := m.scheduler.Start(); err != nil {
			return err
		}
	}

	m.logger.Info("assistant started", "model", completer.ModelName())
	return nil
}

// applyVolume sets the speech volume when both a volume is configured and
// the engine declares volume control support.
func (m *Module) applyVolume(speaker speech.Speaker) {
	if m.config.Voice.Volume == nil {
		return
	}
	vc, ok := speaker.(speech.VolumeController)
	if !ok || !vc.SupportsVolumeControl() {
		m.logger.Warn("voice volume configured but engine does not support volume control")
		return
	}
	if err := vc.SetVolume(*m.config.Voice.Volume); err != nil {
		m.logger.Warn("setting voice volume failed", "error", err)
	}
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if err := m.voice.Stop(); err != nil && !errors.Is(err, ErrVoiceNotStarted) {
		m.logger.Warn("stopping voice capture failed", "error", err)
	}
	if m.scheduler != nil {
		if err := m.scheduler.Stop(ctx); err != nil {
			m.logger.Warn("stopping autosave scheduler failed", "error", err)
		}
	}
	if m.config.SaveOnStop {
		if err := m.orch.SaveHistory(); err != nil {
			m.logger.Warn("saving history on shutdown failed", "error", err)
		}
	}
	return nil
}
