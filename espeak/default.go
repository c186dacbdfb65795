package espeak

import "sync"

var (
	defaultConverter Converter
	defaultMu        sync.Mutex
)

// Default returns the process-wide Converter: a Phonemizer over the native
// engine when it is linked, a Stub otherwise. It is created on first use.
func Default() Converter {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultConverter == nil {
		defaultConverter = newDefault()
	}
	return defaultConverter
}

// SetDefault replaces the process-wide Converter. It is meant for tests and
// for programs that configure their own Phonemizer at startup; the previous
// Converter is not terminated.
func SetDefault(c Converter) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultConverter = c
}

// InitializeWithDefaultLocations initializes the default Converter.
func InitializeWithDefaultLocations() bool {
	return Default().InitializeWithDefaultLocations()
}

// InitializeWithPath initializes the default Converter from path.
func InitializeWithPath(path string) bool {
	return Default().InitializeWithPath(path)
}

// TextToPhonemes converts text with the default Converter.
func TextToPhonemes(text, language string) Result {
	return Default().TextToPhonemes(text, language)
}

// Terminate releases the default Converter's engine.
func Terminate() {
	Default().Terminate()
}
