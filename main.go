// Package main provides the entry point for the phonemize CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/espeak-phonemizer/internal/config"
	"github.com/dgnsrekt/espeak-phonemizer/internal/segment"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile        string
	defaultConfigFile string
	language          string
	dataPath          string
	engineName        string
	copyOutput        bool
	noCache           bool
	markdown          bool
	debug             bool

	// cfg is loaded before any command runs.
	cfg config.Config

	errNoInput = errors.New("no text given: pass it as arguments or pipe it on stdin")

	rootCmd = &cobra.Command{
		Use:   "phonemize [TEXT...]",
		Short: "Convert text to IPA phonemes with eSpeak NG",
		Long: paragraph(
			fmt.Sprintf("\nConvert text to %s with eSpeak NG. Text is read from the arguments, or from stdin when it is piped.", keyword("IPA phonemes")),
		),
		Example:          paragraph("phonemize hello world\nphonemize -l de Guten Tag\necho 'Bonjour' | phonemize -l fr"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if noCache {
		loaded.Cache.Enabled = false
	}
	if debug {
		loaded.Log.Level = "debug"
	}
	cfg = loaded

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.Debug("configuration loaded",
		"language", cfg.Language,
		"engine", cfg.Engine,
		"cache", cfg.Cache.Enabled,
		"file", viper.ConfigFileUsed())
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readInput returns the text to convert: the arguments joined by a space,
// or all of stdin when it is piped and no arguments were given. A single
// "-" argument also reads stdin.
func readInput(args []string, stdin io.Reader, piped bool) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		piped, args = true, nil
	}

	if len(args) == 0 {
		if !piped {
			return "", errNoInput
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		text := strings.TrimSpace(string(b))
		if text == "" {
			return "", errNoInput
		}
		return text, nil
	}

	return strings.Join(args, " "), nil
}

func execute(cmd *cobra.Command, args []string) error {
	piped, err := stdinIsPipe()
	if err != nil {
		return err
	}
	text, err := readInput(args, os.Stdin, piped)
	if err != nil {
		return err
	}
	if cfg.Markdown {
		text = segment.StripMarkdown(text)
	}

	a, err := newApp(cfg, appOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("unable to close", "error", err)
		}
	}()

	out, err := a.service.Phonemize(cmd.Context(), text, cfg.Language)
	if err != nil {
		return fmt.Errorf("unable to convert text: %w", err)
	}

	if copyOutput {
		if err := clipboard.WriteAll(out); err != nil {
			return fmt.Errorf("unable to copy to clipboard: %w", err)
		}
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		out = keyword(out)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringVarP(&language, "lang", "l", "en-us", "voice language, e.g. en-us, de, fr")
	flags.StringVar(&dataPath, "data-path", "", "espeak-ng-data directory (default: search the usual locations)")
	flags.StringVar(&engineName, "engine", config.EngineNative, "phonemizer engine: native or mock")
	flags.BoolVar(&markdown, "markdown", false, "strip markdown formatting before converting")
	flags.BoolVar(&noCache, "no-cache", false, "do not read or write the phoneme cache")
	flags.BoolVar(&debug, "debug", false, "log debug messages")
	rootCmd.Flags().BoolVarP(&copyOutput, "copy", "c", false, "copy the phonemes to the clipboard")

	// Config bindings
	_ = viper.BindPFlag("language", flags.Lookup("lang"))
	_ = viper.BindPFlag("data_path", flags.Lookup("data-path"))
	_ = viper.BindPFlag("engine", flags.Lookup("engine"))
	_ = viper.BindPFlag("markdown", flags.Lookup("markdown"))

	rootCmd.AddCommand(batchCmd, cacheCmd, configCmd, infoCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "phonemize")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "phonemize")}, dirs...)
	}

	if c := os.Getenv("PHONEMIZE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("phonemize")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	defaultConfigFile = filepath.Join(dirs[0], "phonemize.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
