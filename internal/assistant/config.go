package assistant

import (
	"fmt"
	"time"
)

const (
	defaultSystemPrompt = "You are a helpful AI assistant. Keep responses concise and friendly."
	defaultMaxExchanges = 10
	defaultKeyExchanges = 2
	defaultCacheFile    = "response_cache.bin"
	defaultHistoryFile  = "conversation_history.json"
)

// VoiceConfig holds the voice-capture settings.
type VoiceConfig struct {
	// ListenTimeout bounds the wait for speech to begin. Defaults to "5s".
	ListenTimeout string `yaml:"listen_timeout"`

	// PhraseLimit bounds the length of a captured phrase. Defaults to "10s".
	PhraseLimit string `yaml:"phrase_limit"`

	// Volume is the speech volume from 0.0 to 1.0. Applied only when the
	// speaker engine declares volume control support. Nil leaves the engine
	// default untouched.
	Volume *float64 `yaml:"volume"`
}

// Config holds the assistant module configuration.
type Config struct {
	// SystemPrompt is the fixed preamble prepended to every completion call.
	SystemPrompt string `yaml:"system_prompt"`

	// MaxExchanges caps the conversation window at 2×MaxExchanges turns.
	MaxExchanges int `yaml:"max_exchanges"`

	// KeyExchanges is how many recent exchanges participate in cache key
	// derivation.
	KeyExchanges int `yaml:"key_exchanges"`

	// Provider is the service name of the completion backend.
	Provider string `yaml:"provider"`

	// CachePath is the response cache file. Defaults to
	// {DataDir}/response_cache.bin.
	CachePath string `yaml:"cache_path"`

	// HistoryPath is the conversation history file. Defaults to
	// {DataDir}/conversation_history.json.
	HistoryPath string `yaml:"history_path"`

	// RestoreOnStart loads the history file at startup when present.
	RestoreOnStart bool `yaml:"restore_on_start"`

	// SaveOnStop saves the history file at shutdown.
	SaveOnStop bool `yaml:"save_on_stop"`

	// AutosaveSchedule is an optional cron expression for periodic history
	// saves. Empty disables autosave.
	AutosaveSchedule string `yaml:"autosave_schedule"`

	Voice VoiceConfig `yaml:"voice"`
}

func (c *Config) defaults() {
	if c.SystemPrompt == "" {
		c.SystemPrompt = defaultSystemPrompt
	}
	if c.MaxExchanges == 0 {
		c.MaxExchanges = defaultMaxExchanges
	}
	if c.KeyExchanges == 0 {
		c.KeyExchanges = defaultKeyExchanges
	}
	if c.Provider == "" {
		c.Provider = "provider.openai"
	}
	if c.Voice.ListenTimeout == "" {
		c.Voice.ListenTimeout = "5s"
	}
	if c.Voice.PhraseLimit == "" {
		c.Voice.PhraseLimit = "10s"
	}
}

func (c *Config) validate() error {
	if c.MaxExchanges < 1 {
		return fmt.Errorf("assistant: max_exchanges must be positive, got %d", c.MaxExchanges)
	}
	if c.KeyExchanges < 1 {
		return fmt.Errorf("assistant: key_exchanges must be positive, got %d", c.KeyExchanges)
	}
	if _, err := time.ParseDuration(c.Voice.ListenTimeout); err != nil {
		return fmt.Errorf("assistant: invalid voice listen_timeout %q: %w", c.Voice.ListenTimeout, err)
	}
	if _, err := time.ParseDuration(c.Voice.PhraseLimit); err != nil {
		return fmt.Errorf("assistant: invalid voice phrase_limit %q: %w", c.Voice.PhraseLimit, err)
	}
	if v := c.Voice.Volume; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("assistant: voice volume must be in [0, 1], got %g", *v)
	}
	return nil
}

func (c *Config) listenTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Voice.ListenTimeout)
	return d
}

func (c *Config) phraseLimit() time.Duration {
	d, _ := time.ParseDuration(c.Voice.PhraseLimit)
	return d
}
