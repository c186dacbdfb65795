//go:build cgo && !nocgo

package espeak

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

static int discard_audio(short *wav, int numsamples, espeak_EVENT *events) {
	return 0;
}

static void install_discard_callback(void) {
	espeak_SetSynthCallback(discard_audio);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Available reports whether the native engine is linked into this build.
const Available = true

// initializeDontExit stops espeak_Initialize from calling exit(3) when the
// voice data cannot be loaded.
const initializeDontExit = 0x8000

func newDefault() Converter {
	return NewPhonemizer(NewNativeEngine(), Options{})
}

// NativeEngine is the Engine backed by libespeak-ng. eSpeak NG keeps its
// state in C globals, so a process should create at most one NativeEngine
// and hand it to a single Phonemizer.
type NativeEngine struct {
	// scratch holds the phonemes returned by TextToPhonemes until the next
	// call overwrites it.
	scratch []byte
}

var _ Engine = (*NativeEngine)(nil)

// NewNativeEngine returns an uninitialized NativeEngine.
func NewNativeEngine() *NativeEngine {
	return &NativeEngine{scratch: make([]byte, 0, OutputBufferSize)}
}

// Initialize calls espeak_Initialize. An empty dataPath passes NULL so the
// library uses its compiled-in data directory.
func (e *NativeEngine) Initialize(output OutputMode, bufferLength int, dataPath string) (int, error) {
	var cpath *C.char
	if dataPath != "" {
		cpath = C.CString(dataPath)
		defer C.free(unsafe.Pointer(cpath))
	}

	rate := C.espeak_Initialize(C.espeak_AUDIO_OUTPUT(output), C.int(bufferLength), cpath, C.int(initializeDontExit))
	if rate <= 0 {
		return 0, fmt.Errorf("espeak_Initialize returned %d", int(rate))
	}
	if output == OutputSynchronous || output == OutputRetrieval {
		C.install_discard_callback()
	}
	return int(rate), nil
}

// SetVoiceByName calls espeak_SetVoiceByName.
func (e *NativeEngine) SetVoiceByName(name string) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	if rc := C.espeak_SetVoiceByName(cname); rc != C.EE_OK {
		return fmt.Errorf("espeak_SetVoiceByName(%q) returned %d", name, int(rc))
	}
	return nil
}

// Synthesize runs espeak_Synth over the whole text.
func (e *NativeEngine) Synthesize(text string) error {
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	rc := C.espeak_Synth(unsafe.Pointer(ctext), C.size_t(len(text)+1), 0, C.POS_CHARACTER, 0, C.espeakCHARS_AUTO, nil, nil)
	if rc != C.EE_OK {
		return fmt.Errorf("espeak_Synth returned %d", int(rc))
	}
	return nil
}

// TextToPhonemes calls espeak_TextToPhonemes once per clause until the text
// is consumed, joining the clauses with a space.
func (e *NativeEngine) TextToPhonemes(text string, textMode TextMode, phonemeMode PhonemeMode) []byte {
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	e.scratch = e.scratch[:0]
	ptr := unsafe.Pointer(ctext)
	for ptr != nil {
		clause := C.espeak_TextToPhonemes(&ptr, C.int(textMode), C.int(phonemeMode))
		if clause == nil {
			break
		}
		n := int(C.strlen(clause))
		if n == 0 {
			continue
		}
		if len(e.scratch) > 0 {
			e.scratch = append(e.scratch, ' ')
		}
		e.scratch = append(e.scratch, unsafe.Slice((*byte)(unsafe.Pointer(clause)), n)...)
	}
	return e.scratch
}

// Terminate calls espeak_Terminate.
func (e *NativeEngine) Terminate() {
	C.espeak_Terminate()
}
