package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/espeak-phonemizer/espeak"
	"github.com/dgnsrekt/espeak-phonemizer/internal/config"
)

// engineStatus is implemented by espeak.Phonemizer.
type engineStatus interface {
	State() espeak.State
	DataPath() string
	SampleRate() int
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show engine and configuration details",
	Long:  paragraph(fmt.Sprintf("\nInitialize the engine and report %s, where its voice data was found and which settings are in effect.", keyword("whether it works"))),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		converter, err := newConverter(cfg)
		if err != nil {
			return err
		}
		defer converter.Terminate()

		ready := true
		if cfg.DataPath == "" {
			ready = converter.InitializeWithDefaultLocations()
		}

		printInfo(cmd.OutOrStdout(), cfg, converter, ready)
		return nil
	},
}

func printInfo(w io.Writer, cfg config.Config, converter espeak.Converter, ready bool) {
	linked := keyword("linked")
	if !espeak.Available {
		linked = errorText("not linked")
	}
	fmt.Fprintln(w, label("Engine")+cfg.Engine+" (libespeak-ng "+linked+")")

	if status, ok := converter.(engineStatus); ok {
		state := status.State().String()
		if ready {
			state = keyword(state)
		} else {
			state = errorText(state)
		}
		fmt.Fprintln(w, label("State")+state)
		if path := status.DataPath(); path != "" {
			fmt.Fprintln(w, label("Data path")+path)
		} else if ready {
			fmt.Fprintln(w, label("Data path")+faint("engine default"))
		}
		if rate := status.SampleRate(); rate > 0 {
			fmt.Fprintln(w, label("Sample rate")+fmt.Sprintf("%d Hz", rate))
		}
	} else {
		fmt.Fprintln(w, label("State")+errorText("unavailable"))
	}

	fmt.Fprintln(w, label("Language")+cfg.Language)

	fmt.Fprintln(w, label("Search path"))
	for _, loc := range append(espeak.DefaultLocations(), espeak.BundleLocations()...) {
		mark := faint("-")
		if _, err := os.Stat(loc); err == nil {
			mark = keyword("+")
		}
		fmt.Fprintf(w, "  %s %s\n", mark, loc)
	}

	configUsed := viper.ConfigFileUsed()
	if configUsed == "" {
		configUsed = faint("none")
	}
	fmt.Fprintln(w, label("Config file")+configUsed)

	cacheDir := cfg.Cache.Dir
	if cacheDir == "" {
		cacheDir, _ = defaultCacheDir()
	}
	if !cfg.Cache.Enabled {
		cacheDir += " " + faint("(disabled)")
	}
	fmt.Fprintln(w, label("Cache")+cacheDir)
}
