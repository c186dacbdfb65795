//go:build !cgo || nocgo

package espeak

// Available reports whether the native engine is linked into this build.
const Available = false

func newDefault() Converter {
	return Stub{}
}
