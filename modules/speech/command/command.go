// Package command implements the speech.command module: text-to-speech and
// speech-to-text backed by external commands, so any engine with a CLI
// (espeak-ng, say, whisper, vosk wrappers) can serve the overlay.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aikodesk/aiko/internal/core"
	"github.com/aikodesk/aiko/internal/speech"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Engine{})
}

// Compile-time interface guards.
var (
	_ speech.Speaker          = (*Engine)(nil)
	_ speech.Listener         = (*Engine)(nil)
	_ speech.VolumeController = (*Engine)(nil)
	_ core.Module             = (*Engine)(nil)
	_ core.Configurable       = (*Engine)(nil)
	_ core.Provisioner        = (*Engine)(nil)
	_ core.Validator          = (*Engine)(nil)
)

// Engine shells out to configured commands for both speech directions.
type Engine struct {
	config Config
	logger *slog.Logger

	mu     sync.Mutex
	volume float64
}

// ModuleInfo implements core.Module.
func (e *Engine) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "speech.command",
		New: func() core.Module { return &Engine{} },
	}
}

// Configure implements core.Configurable.
func (e *Engine) Configure(node *yaml.Node) error {
	return node.Decode(&e.config)
}

// Provision implements core.Provisioner.
func (e *Engine) Provision(ctx *core.AppContext) error {
	e.logger = ctx.Logger
	e.volume = 1.0

	if len(e.config.SpeakCommand) > 0 {
		ctx.RegisterService("speech.speaker", e)
	}
	if len(e.config.ListenCommand) > 0 {
		ctx.RegisterService("speech.listener", e)
	}
	return nil
}

// Validate implements core.Validator.
func (e *Engine) Validate() error {
	return e.config.validate()
}

// Speak runs the configured speak command for text. Blocks until the command
// exits; callers wanting fire-and-forget run it from a goroutine.
func (e *Engine) Speak(ctx context.Context, text string) error {
	if len(e.config.SpeakCommand) == 0 {
		return errors.New("speech.command: no speak_command configured")
	}

	argv := e.speakArgv(text)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if !containsPlaceholder(e.config.SpeakCommand, textPlaceholder) {
		cmd.Stdin = strings.NewReader(text)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("speech.command: speak: %w (output: %s)", err, bytes.TrimSpace(out))
	}
	return nil
}

// speakArgv builds the speak argv with text and volume substituted.
func (e *Engine) speakArgv(text string) []string {
	e.mu.Lock()
	volume := e.volume
	e.mu.Unlock()

	argv := substitute(e.config.SpeakCommand, textPlaceholder, text)
	if len(e.config.VolumeArgs) > 0 {
		scaled := strconv.Itoa(int(volume * 100))
		argv = append(argv, substitute(e.config.VolumeArgs, volumePlaceholder, scaled)...)
	}
	return argv
}

// Listen runs the configured listen command and returns its stdout, trimmed.
// The context deadline covers timeout plus phraseLimit; hitting it means no
// speech was detected, which is not an error.
func (e *Engine) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	if len(e.config.ListenCommand) == 0 {
		return "", fmt.Errorf("%w: no listen_command configured", speech.ErrRecognition)
	}

	listenCtx, cancel := context.WithTimeout(ctx, timeout+phraseLimit)
	defer cancel()

	argv := substitute(e.config.ListenCommand, timeoutPlaceholder, strconv.FormatInt(timeout.Milliseconds(), 10))
	argv = substitute(argv, phrasePlaceholder, strconv.FormatInt(phraseLimit.Milliseconds(), 10))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(listenCtx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if listenCtx.Err() != nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w (stderr: %s)", speech.ErrRecognition, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// SupportsVolumeControl implements speech.VolumeController.
func (e *Engine) SupportsVolumeControl() bool {
	return len(e.config.VolumeArgs) > 0
}

// SetVolume implements speech.VolumeController.
func (e *Engine) SetVolume(level float64) error {
	if !e.SupportsVolumeControl() {
		return errors.New("speech.command: volume control not configured")
	}
	if level < 0 || level > 1 {
		return fmt.Errorf("speech.command: volume %v out of range [0, 1]", level)
	}
	e.mu.Lock()
	e.volume = level
	e.mu.Unlock()
	return nil
}

// substitute replaces placeholder with value in every argument.
func substitute(argv []string, placeholder, value string) []string {
	result := make([]string, len(argv))
	for i, arg := range argv {
		result[i] = strings.ReplaceAll(arg, placeholder, value)
	}
	return result
}

// containsPlaceholder reports whether any argument carries the placeholder.
func containsPlaceholder(argv []string, placeholder string) bool {
	for _, arg := range argv {
		if strings.Contains(arg, placeholder) {
			return true
		}
	}
	return false
}
