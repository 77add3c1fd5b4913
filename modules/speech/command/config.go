package command

import (
	"errors"
	"fmt"
	"strings"
)

// Placeholders substituted into configured argv lists.
const (
	textPlaceholder    = "{text}"
	volumePlaceholder  = "{volume}"
	timeoutPlaceholder = "{timeout_ms}"
	phrasePlaceholder  = "{phrase_limit_ms}"
)

// Config holds the speech.command module configuration.
type Config struct {
	// SpeakCommand is the argv run to speak text. If any argument contains
	// {text} it is substituted in place; otherwise the text is piped to the
	// command's stdin. Example: ["espeak-ng", "{text}"].
	SpeakCommand []string `yaml:"speak_command"`

	// VolumeArgs are extra arguments appended to SpeakCommand when a volume
	// has been set; {volume} expands to the level scaled 0-100. Configuring
	// them is what declares the volume-control capability.
	VolumeArgs []string `yaml:"volume_args"`

	// ListenCommand is the argv run to capture one utterance; it must print
	// the recognized text to stdout. {timeout_ms} and {phrase_limit_ms}
	// expand to the listen bounds. Empty output means no speech detected.
	ListenCommand []string `yaml:"listen_command"`
}

func (c *Config) validate() error {
	if len(c.SpeakCommand) == 0 && len(c.ListenCommand) == 0 {
		return errors.New("speech.command: at least one of speak_command and listen_command is required")
	}
	if len(c.VolumeArgs) > 0 && len(c.SpeakCommand) == 0 {
		return errors.New("speech.command: volume_args configured without speak_command")
	}
	for _, arg := range c.VolumeArgs {
		if strings.Contains(arg, volumePlaceholder) {
			return nil
		}
	}
	if len(c.VolumeArgs) > 0 {
		return fmt.Errorf("speech.command: volume_args must contain %s", volumePlaceholder)
	}
	return nil
}
