// Package mock provides a deterministic espeak.Engine for tests and for
// running without libespeak-ng.
package mock

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/dgnsrekt/espeak-phonemizer/espeak"
)

// Method names recorded in the call log.
const (
	MethodInitialize = "Initialize"
	MethodSetVoice   = "SetVoiceByName"
	MethodSynthesize = "Synthesize"
	MethodPhonemes   = "TextToPhonemes"
	MethodTerminate  = "Terminate"
)

// DefaultSampleRate is reported by a successful Initialize.
const DefaultSampleRate = 22050

var (
	errPathRejected   = errors.New("mock: data path rejected")
	errUnknownVoice   = errors.New("mock: unknown voice")
	errSynthesis      = errors.New("mock: synthesis failed")
	errNotInitialized = errors.New("mock: engine not initialized")
)

// Call is one recorded engine call.
type Call struct {
	Method string
	Arg    string
}

// Engine implements espeak.Engine without native code. Like the real engine
// it keeps a single output buffer that every TextToPhonemes call overwrites,
// and it counts calls that overlap in time so tests can detect missing
// serialization.
type Engine struct {
	// Configuration
	acceptPaths   map[string]bool
	rejectDefault bool
	voices        map[string]bool
	failSynthesis bool
	output        func(text string) string
	panicMethod   string
	delay         time.Duration
	sampleRate    int

	// State
	initialized bool
	voice       string
	buf         []byte

	active   atomic.Int32
	overlaps atomic.Int32

	// Call log
	logMu sync.Mutex
	calls []Call
}

var _ espeak.Engine = (*Engine)(nil)

// bufferSize is the fixed capacity of the mock's output buffer. Longer
// conversions are truncated to it.
const bufferSize = 2 * espeak.OutputBufferSize

// New creates a mock engine that accepts any data path and a small set of
// common voices.
func New() *Engine {
	return &Engine{
		voices: map[string]bool{
			"en": true, "en-us": true, "en-gb": true,
			"de": true, "fr": true, "es": true,
		},
		sampleRate: DefaultSampleRate,
		buf:        make([]byte, 0, bufferSize),
	}
}

// Phonemes is the deterministic conversion the mock applies to text.
func Phonemes(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r == 'a':
			b.WriteRune('æ')
		case r == 'e':
			b.WriteRune('ɛ')
		case r == 'i':
			b.WriteRune('ɪ')
		case r == 'o':
			b.WriteRune('ɒ')
		case r == 'u':
			b.WriteRune('ʌ')
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Initialize accepts path unless it was excluded by AcceptPaths or
// RejectDefault.
func (e *Engine) Initialize(_ espeak.OutputMode, _ int, dataPath string) (int, error) {
	defer e.enter(MethodInitialize, dataPath)()

	if dataPath == "" && e.rejectDefault {
		return 0, errPathRejected
	}
	if dataPath != "" && e.acceptPaths != nil && !e.acceptPaths[dataPath] {
		return 0, errPathRejected
	}
	e.initialized = true
	return e.sampleRate, nil
}

// SetVoiceByName selects a known voice.
func (e *Engine) SetVoiceByName(name string) error {
	defer e.enter(MethodSetVoice, name)()

	if !e.initialized {
		return errNotInitialized
	}
	if !e.voices[name] {
		return errUnknownVoice
	}
	e.voice = name
	return nil
}

// Synthesize succeeds unless SetSynthesisFailure was called.
func (e *Engine) Synthesize(text string) error {
	defer e.enter(MethodSynthesize, text)()

	if e.failSynthesis {
		return errSynthesis
	}
	return nil
}

// TextToPhonemes writes the conversion of text into the engine's single
// output buffer and returns it.
func (e *Engine) TextToPhonemes(text string, _ espeak.TextMode, _ espeak.PhonemeMode) []byte {
	defer e.enter(MethodPhonemes, text)()

	if !e.initialized || e.voice == "" {
		return nil
	}
	convert := Phonemes
	if e.output != nil {
		convert = e.output
	}

	out := convert(text)
	e.buf = e.buf[:min(len(out), cap(e.buf))]
	copy(e.buf, out)
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return e.buf
}

// Terminate resets the engine to its uninitialized state.
func (e *Engine) Terminate() {
	defer e.enter(MethodTerminate, "")()

	e.initialized = false
	e.voice = ""
}

// Test control methods

// AcceptPaths restricts Initialize to the given data paths. The engine
// default is still accepted unless RejectDefault is set.
func (e *Engine) AcceptPaths(paths ...string) {
	e.acceptPaths = make(map[string]bool, len(paths))
	for _, p := range paths {
		e.acceptPaths[p] = true
	}
}

// RejectDefault makes Initialize fail when no data path is given.
func (e *Engine) RejectDefault() {
	e.rejectDefault = true
}

// SetVoices replaces the set of voices SetVoiceByName accepts.
func (e *Engine) SetVoices(names ...string) {
	e.voices = make(map[string]bool, len(names))
	for _, n := range names {
		e.voices[n] = true
	}
}

// SetSynthesisFailure makes every Synthesize call fail.
func (e *Engine) SetSynthesisFailure(fail bool) {
	e.failSynthesis = fail
}

// SetOutput replaces the text-to-phoneme conversion.
func (e *Engine) SetOutput(fn func(text string) string) {
	e.output = fn
}

// SetPanic makes the named method panic.
func (e *Engine) SetPanic(method string) {
	e.panicMethod = method
}

// SetDelay makes TextToPhonemes hold the engine for d after writing its
// output, widening the window for overlapping calls.
func (e *Engine) SetDelay(d time.Duration) {
	e.delay = d
}

// Calls returns a copy of the call log.
func (e *Engine) Calls() []Call {
	e.logMu.Lock()
	defer e.logMu.Unlock()

	calls := make([]Call, len(e.calls))
	copy(calls, e.calls)
	return calls
}

// CallsTo returns the arguments of every recorded call to method.
func (e *Engine) CallsTo(method string) []string {
	var args []string
	for _, c := range e.Calls() {
		if c.Method == method {
			args = append(args, c.Arg)
		}
	}
	return args
}

// Overlaps returns how many calls started while another was still running.
func (e *Engine) Overlaps() int {
	return int(e.overlaps.Load())
}

// enter records a call and marks the engine busy until the returned
// function runs.
func (e *Engine) enter(method, arg string) func() {
	if e.active.Add(1) > 1 {
		e.overlaps.Add(1)
	}

	e.logMu.Lock()
	e.calls = append(e.calls, Call{Method: method, Arg: arg})
	e.logMu.Unlock()

	if e.panicMethod == method {
		e.active.Add(-1)
		panic("mock: " + method + " panicked")
	}
	return func() { e.active.Add(-1) }
}
