package espeak

// Stub is the Converter linked into builds without the native engine. Every
// operation fails immediately and has no side effects.
type Stub struct{}

var _ Converter = Stub{}

// InitializeWithDefaultLocations always returns false.
func (Stub) InitializeWithDefaultLocations() bool { return false }

// InitializeWithPath always returns false.
func (Stub) InitializeWithPath(string) bool { return false }

// TextToPhonemes always returns a failed Result.
func (Stub) TextToPhonemes(string, string) Result { return Result{} }

// Convert always returns ErrEngineUnavailable.
func (Stub) Convert(string, string) (string, error) { return "", ErrEngineUnavailable }

// Terminate does nothing.
func (Stub) Terminate() {}
