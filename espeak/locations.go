package espeak

import (
	"os"
	"path/filepath"
)

// DataDirName is the directory name eSpeak NG installs its voice data under.
const DataDirName = "espeak-ng-data"

// DefaultLocations returns the candidate voice data directories tried by
// InitializeWithDefaultLocations, in order: a source checkout, a system
// install, and the working directory.
func DefaultLocations() []string {
	return []string{
		filepath.Join("third_party", "espeak-ng", DataDirName),
		filepath.Join("/usr", "local", "share", DataDirName),
		filepath.Join(".", DataDirName),
	}
}

// BundleLocations returns candidate data directories relative to the
// running executable. They are tried by lazy initialization after the
// default locations and the engine default have failed.
func BundleLocations() []string {
	exe, err := os.Executable()
	if err != nil {
		return nil
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)

	return []string{
		filepath.Join(dir, DataDirName),
		filepath.Join(dir, "..", "share", DataDirName),
		filepath.Join(dir, "..", "Resources", DataDirName),
	}
}
