package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# Every key is optional. Values set here override PHONEMIZE_* environment
# variables; command line flags override both.

# voice language used when --lang is not given
# language: "en-us"
# phonemizer engine: native (libespeak-ng) or mock
# engine: "native"
# espeak-ng-data directory; empty searches the usual locations
# data_path: ""
# strip markdown formatting before converting
# markdown: false

# batch:
#   # conversions in flight at once (1-64)
#   workers: 4
#   # engine calls per second; 0 means unlimited
#   rate: 0
#   burst: 1
#   # serve Prometheus metrics on this address, e.g. ":9464"
#   metrics_addr: ""

# cache:
#   enabled: true
#   # empty uses the user cache directory
#   dir: ""
#   memory_mb: 16
#   disk_mb: 256
#   ttl: "720h"
#   # zstd level for large entries; 0 disables compression
#   compression_level: 3

# log:
#   # debug, info, warn or error
#   level: "warn"
#   # empty uses phonemize.log in the user cache directory
#   file: ""
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the phonemize config file",
	Long:    paragraph(fmt.Sprintf("\n%s the phonemize config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("phonemize config\nphonemize config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("phonemize", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if configFile == "" {
		return errors.New("no config file location available")
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
