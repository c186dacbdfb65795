//go:build unix

package espeak

import "golang.org/x/sys/unix"

// pathExists reports whether path exists, using access(2) with F_OK.
func pathExists(path string) bool {
	return unix.Access(path, unix.F_OK) == nil
}
