package espeak

import (
	"fmt"
	"unicode/utf8"
)

const (
	// MaxTextLength is the longest text, in characters, accepted by a
	// single conversion.
	MaxTextLength = 2048

	// OutputBufferSize is the capacity of the buffer phonemes are staged in.
	// Output that does not fit is a failed conversion, never a truncated one.
	OutputBufferSize = 4096

	// FallbackVoice is selected when the requested voice is rejected.
	FallbackVoice = "en"
)

// Result is the outcome of a conversion. Phonemes is empty unless Success
// is true, and is never shared with another call.
type Result struct {
	Success  bool
	Phonemes string
}

// Converter is the public contract shared by the native Phonemizer and the
// Stub linked into builds without the engine.
type Converter interface {
	// InitializeWithDefaultLocations initializes the engine from the first
	// working candidate data location. It reports whether the engine is
	// ready.
	InitializeWithDefaultLocations() bool

	// InitializeWithPath initializes the engine from path, or from the
	// engine default when path is empty.
	InitializeWithPath(path string) bool

	// TextToPhonemes converts text spoken in language to IPA phonemes.
	TextToPhonemes(text, language string) Result

	// Convert is TextToPhonemes with the failure reason attached.
	Convert(text, language string) (string, error)

	// Terminate releases the engine. It is safe to call at any time.
	Terminate()
}

// ValidateRequest checks a conversion request without touching the engine.
func ValidateRequest(text, language string) error {
	if text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return fmt.Errorf("%w: text is %d characters, limit is %d", ErrInvalidInput, n, MaxTextLength)
	}
	if language == "" {
		return fmt.Errorf("%w: empty language", ErrInvalidInput)
	}
	return nil
}

func resultOf(phonemes string, err error) Result {
	if err != nil {
		return Result{}
	}
	return Result{Success: true, Phonemes: phonemes}
}
