package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

func getLogFilePath() (string, error) {
	if p := os.Getenv("PHONEMIZE_LOG_FILE"); p != "" {
		return homedir.Expand(p)
	}
	if p := viper.GetString("log.file"); p != "" {
		return homedir.Expand(p)
	}
	dir, err := gap.NewScope(gap.User, "phonemize").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "phonemize.log"), nil
}

// setupLog sends the default logger to the log file. The level is set once
// the configuration has been loaded.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetLevel(log.WarnLevel)
	return f.Close, nil
}
