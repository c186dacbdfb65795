package espeak

// OutputMode selects how the engine delivers synthesized audio. Values match
// espeak_AUDIO_OUTPUT in speak_lib.h.
type OutputMode int

const (
	// OutputPlayback plays audio asynchronously on the default device.
	OutputPlayback OutputMode = iota
	// OutputRetrieval delivers audio to a callback asynchronously.
	OutputRetrieval
	// OutputSynchronous delivers audio to a callback before Synth returns.
	OutputSynchronous
	// OutputSynchPlayback plays audio on the default device before Synth returns.
	OutputSynchPlayback
)

// TextMode describes the encoding of text handed to the engine.
type TextMode int

const (
	// TextAuto lets the engine guess between UTF-8 and 8-bit text.
	TextAuto TextMode = 0
	// TextUTF8 is UTF-8 encoded text.
	TextUTF8 TextMode = 1
)

// PhonemeMode is the phonememode bit set passed to espeak_TextToPhonemes.
type PhonemeMode int

const (
	// PhonemesASCII emits eSpeak's own ASCII phoneme mnemonics.
	PhonemesASCII PhonemeMode = 0x00
	// PhonemesIPA emits International Phonetic Alphabet symbols as UTF-8.
	PhonemesIPA PhonemeMode = 0x02
	// PhonemesTie joins multi-letter phonemes with a tie character. Combine
	// with PhonemesIPA.
	PhonemesTie PhonemeMode = 0x80
)

// Engine is the native text-to-speech engine as seen by a Phonemizer.
//
// Implementations wrap process-global native state and are NOT safe for
// concurrent use; a Phonemizer guarantees that at most one method runs at a
// time.
type Engine interface {
	// Initialize loads voice data from dataPath, or from the engine's
	// compiled-in default location when dataPath is empty. It returns the
	// output sample rate.
	Initialize(output OutputMode, bufferLength int, dataPath string) (sampleRate int, err error)

	// SetVoiceByName selects the voice used by later Synthesize and
	// TextToPhonemes calls.
	SetVoiceByName(name string) error

	// Synthesize runs a full synthesis pass over text.
	Synthesize(text string) error

	// TextToPhonemes converts text and returns the phonemes. The returned
	// slice is owned by the engine and is only valid until the next call
	// into the engine.
	TextToPhonemes(text string, textMode TextMode, phonemeMode PhonemeMode) []byte

	// Terminate releases everything acquired by Initialize.
	Terminate()
}
