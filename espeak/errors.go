package espeak

import "errors"

// Conversion and lifecycle failures. None of them is fatal; callers of the
// bool and Result APIs only ever see a failed result.
var (
	// ErrInvalidInput is returned for empty or over-long text, or an empty
	// language. It is detected without touching the engine.
	ErrInvalidInput = errors.New("invalid conversion request")

	// ErrEngineUnavailable is returned when the native engine is not linked
	// into this build.
	ErrEngineUnavailable = errors.New("espeak engine not available in this build")

	// ErrInitializationFailed is returned when no candidate data location,
	// nor the engine default, could initialize the engine.
	ErrInitializationFailed = errors.New("espeak initialization failed")

	// ErrVoiceSelectionFailed is returned when both the requested voice and
	// the fallback voice were rejected.
	ErrVoiceSelectionFailed = errors.New("espeak voice selection failed")

	// ErrConversionFailed is returned when the engine produced no phonemes,
	// or more than fit in the output buffer.
	ErrConversionFailed = errors.New("espeak phoneme conversion failed")
)
