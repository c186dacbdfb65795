// Package espeak provides safe concurrent access to the eSpeak NG
// text-to-phoneme converter.
//
// eSpeak NG keeps all of its state in C globals and is not re-entrant: two
// threads converting at the same time corrupt each other's output. A
// Phonemizer owns one Engine and serializes every call into it behind a
// single mutex, initializes it lazily from a list of candidate data
// directories, and copies the engine's transient output into memory owned
// by the caller before the lock is released.
//
// Builds without cgo (or with the nocgo tag) link a Stub instead of the
// native engine. Both satisfy Converter, so callers never need to know which
// one they got:
//
//	if r := espeak.TextToPhonemes("hello world", "en-us"); r.Success {
//		fmt.Println(r.Phonemes)
//	}
package espeak
