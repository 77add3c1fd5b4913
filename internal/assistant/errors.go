package assistant

import "errors"

var (
	// ErrProcessing wraps completion failures that are not one of the
	// provider sentinels. The underlying cause is always attached.
	ErrProcessing = errors.New("assistant: processing failed")

	// ErrBusy is returned when Handle is called while another request is
	// already in flight. Requests are serialized, never queued.
	ErrBusy = errors.New("assistant: a request is already in flight")

	// ErrVoiceAlreadyStarted is returned by VoiceController.Start when the
	// capture loop is already running.
	ErrVoiceAlreadyStarted = errors.New("assistant: voice capture already started")

	// ErrVoiceNotStarted is returned by VoiceController.Stop when the
	// capture loop is not running.
	ErrVoiceNotStarted = errors.New("assistant: voice capture not started")

	// ErrNoListener is returned by VoiceController.Start when no
	// speech-to-text engine is configured.
	ErrNoListener = errors.New("assistant: no speech listener configured")
)
