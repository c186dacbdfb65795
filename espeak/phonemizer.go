package espeak

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	// outputMode keeps synthesis off the audio device; the priming pass
	// only needs the engine to run, not to play anything.
	outputMode = OutputSynchronous

	// bufferLength is the synthesis buffer length hint in milliseconds.
	bufferLength = 500
)

// Options configures a Phonemizer. The zero value is ready to use.
type Options struct {
	// Locations are candidate voice data directories tried in order by
	// InitializeWithDefaultLocations. Nil means DefaultLocations().
	Locations []string

	// BundleLocations are tried by lazy initialization once Locations and
	// the engine default have failed. Nil means BundleLocations().
	BundleLocations []string

	// FallbackVoice is selected when the requested voice is rejected.
	// Empty means FallbackVoice.
	FallbackVoice string

	// Logger receives lifecycle and fallback events. Nil means the default
	// logger with an "espeak" prefix.
	Logger *log.Logger

	// PathExists overrides the filesystem existence check. Nil means a
	// real check.
	PathExists func(path string) bool
}

// Phonemizer serializes access to a single Engine.
//
// Every exported method holds mu for its entire duration, including any lazy
// initialization triggered by a conversion. Helpers with a Locked suffix
// expect mu to be held already and never acquire it.
type Phonemizer struct {
	mu sync.Mutex

	engine     Engine
	state      State
	dataPath   string
	sampleRate int

	locations       []string
	bundleLocations []string
	fallbackVoice   string
	exists          func(string) bool
	logger          *log.Logger

	// buf stages engine output on its way to the caller. Only the current
	// holder of mu reads or writes it.
	buf [OutputBufferSize]byte
}

var _ Converter = (*Phonemizer)(nil)

// NewPhonemizer returns a Phonemizer that owns engine. The engine must not
// be used by anything else afterwards.
func NewPhonemizer(engine Engine, opts Options) *Phonemizer {
	p := &Phonemizer{
		engine:          engine,
		locations:       opts.Locations,
		bundleLocations: opts.BundleLocations,
		fallbackVoice:   opts.FallbackVoice,
		exists:          opts.PathExists,
		logger:          opts.Logger,
	}

	if p.locations == nil {
		p.locations = DefaultLocations()
	}
	if p.bundleLocations == nil {
		p.bundleLocations = BundleLocations()
	}
	if p.fallbackVoice == "" {
		p.fallbackVoice = FallbackVoice
	}
	if p.exists == nil {
		p.exists = pathExists
	}
	if p.logger == nil {
		p.logger = log.Default().WithPrefix("espeak")
	}

	return p
}

// InitializeWithDefaultLocations initializes the engine from the first
// existing candidate location that the engine accepts, falling back to the
// engine's built-in default. It returns true immediately if the engine is
// already initialized.
func (p *Phonemizer) InitializeWithDefaultLocations() (ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.recoverBool(&ok)

	return p.initDefaultLocked() == nil
}

// InitializeWithPath initializes the engine from path. A non-empty path that
// does not exist fails without calling into the engine; an empty path uses
// the engine default.
func (p *Phonemizer) InitializeWithPath(path string) (ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.recoverBool(&ok)

	if p.state == StateInitialized {
		return true
	}
	if path != "" && !p.exists(path) {
		p.logger.Warn("espeak data path does not exist", "path", path)
		return false
	}
	return p.initLocked(path) == nil
}

// TextToPhonemes converts text to IPA phonemes using the voice for
// language, initializing the engine first if needed.
func (p *Phonemizer) TextToPhonemes(text, language string) Result {
	return resultOf(p.Convert(text, language))
}

// Convert converts text to IPA phonemes and reports why a conversion failed.
func (p *Phonemizer) Convert(text, language string) (phonemes string, err error) {
	if err := ValidateRequest(text, language); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("espeak engine panicked during conversion", "panic", r)
			phonemes, err = "", fmt.Errorf("%w: engine panic: %v", ErrConversionFailed, r)
		}
	}()

	if err := p.ensureInitializedLocked(); err != nil {
		return "", err
	}
	if err := p.selectVoiceLocked(language); err != nil {
		return "", err
	}

	// Some inputs fail full synthesis but still convert to valid phonemes.
	if err := p.engine.Synthesize(text); err != nil {
		p.logger.Debug("priming synthesis failed", "language", language, "error", err)
	}

	out := p.engine.TextToPhonemes(text, TextUTF8, PhonemesIPA)
	return p.handOffLocked(out)
}

// Terminate tears the engine down if it is initialized. A later
// initialization call brings it back up.
func (p *Phonemizer) Terminate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("espeak engine panicked during terminate", "panic", r)
		}
	}()

	if p.state != StateInitialized {
		return
	}
	p.engine.Terminate()
	p.state = StateTerminated
	p.logger.Debug("espeak terminated")
}

// State returns the current lifecycle state.
func (p *Phonemizer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// DataPath returns the data location the engine was initialized from. It is
// empty when the engine default was used or the engine is not initialized.
func (p *Phonemizer) DataPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dataPath
}

// SampleRate returns the sample rate reported by the last successful
// initialization, or 0.
func (p *Phonemizer) SampleRate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sampleRate
}

func (p *Phonemizer) initDefaultLocked() error {
	if p.state == StateInitialized {
		return nil
	}
	if p.initCandidatesLocked(p.locations) {
		return nil
	}
	if p.initLocked("") == nil {
		return nil
	}
	return ErrInitializationFailed
}

func (p *Phonemizer) ensureInitializedLocked() error {
	if p.state == StateInitialized {
		return nil
	}
	if p.initDefaultLocked() == nil {
		return nil
	}
	if p.initCandidatesLocked(p.bundleLocations) {
		return nil
	}
	p.logger.Error("no espeak data location could be initialized",
		"locations", p.locations,
		"bundle", p.bundleLocations)
	return ErrInitializationFailed
}

// initCandidatesLocked tries each existing path in order and stops at the
// first one the engine accepts.
func (p *Phonemizer) initCandidatesLocked(paths []string) bool {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if !p.exists(path) {
			p.logger.Debug("skipping missing espeak data path", "path", path)
			continue
		}
		if p.initLocked(path) == nil {
			return true
		}
	}
	return false
}

func (p *Phonemizer) initLocked(path string) error {
	rate, err := p.engine.Initialize(outputMode, bufferLength, path)
	if err == nil && rate <= 0 {
		err = fmt.Errorf("engine reported sample rate %d", rate)
	}
	if err != nil {
		p.logger.Debug("espeak initialization attempt failed", "path", displayPath(path), "error", err)
		return fmt.Errorf("%w: %s: %v", ErrInitializationFailed, displayPath(path), err)
	}

	p.state = StateInitialized
	p.dataPath = path
	p.sampleRate = rate
	p.logger.Info("espeak initialized", "path", displayPath(path), "sample_rate", rate)
	return nil
}

func (p *Phonemizer) selectVoiceLocked(language string) error {
	err := p.engine.SetVoiceByName(language)
	if err == nil {
		return nil
	}

	p.logger.Warn("voice rejected, using fallback",
		"voice", language,
		"fallback", p.fallbackVoice,
		"error", err)
	if fbErr := p.engine.SetVoiceByName(p.fallbackVoice); fbErr != nil {
		return fmt.Errorf("%w: %q: %v; fallback %q: %v",
			ErrVoiceSelectionFailed, language, err, p.fallbackVoice, fbErr)
	}
	return nil
}

// handOffLocked copies engine-owned output through the staging buffer into
// a string the caller owns outright.
func (p *Phonemizer) handOffLocked(out []byte) (string, error) {
	if len(out) == 0 {
		return "", fmt.Errorf("%w: engine returned no phonemes", ErrConversionFailed)
	}
	if len(out) >= len(p.buf) {
		return "", fmt.Errorf("%w: %d bytes of phonemes overflow the %d byte buffer",
			ErrConversionFailed, len(out), len(p.buf))
	}

	n := copy(p.buf[:], out)
	return string(p.buf[:n]), nil
}

func (p *Phonemizer) recoverBool(ok *bool) {
	if r := recover(); r != nil {
		p.logger.Error("espeak engine panicked during initialization", "panic", r)
		*ok = false
	}
}

func displayPath(path string) string {
	if path == "" {
		return "<engine default>"
	}
	return path
}
