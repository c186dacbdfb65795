package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/espeak-phonemizer/internal/config"
	"github.com/dgnsrekt/espeak-phonemizer/internal/phonemes"
	"github.com/dgnsrekt/espeak-phonemizer/internal/segment"
)

const (
	// batchBlockSize is how many lines are read before a block is converted.
	batchBlockSize = 256

	// maxLineBytes bounds a single input line.
	maxLineBytes = 1024 * 1024
)

var (
	batchWorkers     int
	batchRate        float64
	batchMetricsAddr string
	batchTable       bool

	batchCmd = &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Convert one text per line",
		Long: paragraph(fmt.Sprintf("\nConvert every line of FILE, or of stdin, to phonemes. Output keeps input order, %s. "+
			"Failed lines are reported on stderr and leave an empty output line.", keyword("one line per input line"))),
		Example: paragraph("phonemize batch words.txt\ncat words.txt | phonemize batch --workers 8 --table"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runBatch,
	}
)

// batchStats summarizes a batch run.
type batchStats struct {
	lines   int
	failed  int
	skipped int
}

func (s *batchStats) add(results []phonemes.LineResult) {
	s.lines += len(results)
	s.failed += phonemes.Failed(results)
	for _, r := range results {
		if r.Skipped {
			s.skipped++
		}
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	in, closeInput, err := batchInput(args)
	if err != nil {
		return err
	}
	defer closeInput()

	a, err := newApp(cfg, appOptions{metrics: cfg.Batch.MetricsAddr != "", limit: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("unable to close", "error", err)
		}
	}()

	if addr := cfg.Batch.MetricsAddr; addr != "" {
		stop := serveMetrics(addr, a.registry)
		defer stop()
	}

	var lang atomic.Pointer[string]
	lang.Store(&cfg.Language)
	if viper.ConfigFileUsed() != "" && !cmd.Flags().Changed("lang") {
		watchLanguage(&lang)
	}

	table := batchTable
	width := 100
	if isTerminal := term.IsTerminal(int(os.Stdout.Fd())); isTerminal {
		if !cmd.Flags().Changed("table") {
			table = true
		}
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	start := time.Now()
	var stats batchStats
	write := func(results []phonemes.LineResult) error {
		stats.add(results)
		if table {
			_, err := fmt.Fprint(cmd.OutOrStdout(), renderTable(results, width))
			return err
		}
		return writePlain(cmd.OutOrStdout(), cmd.ErrOrStderr(), results)
	}

	opts := blockOptions{
		workers:  cfg.Batch.Workers,
		markdown: cfg.Markdown,
		language: func() string { return *lang.Load() },
	}
	err = convertBlocks(cmd.Context(), a.service, in, opts, write)

	fmt.Fprintln(cmd.ErrOrStderr(), faint(fmt.Sprintf("%s lines, %s failed, %s skipped in %s",
		humanize.Comma(int64(stats.lines)),
		humanize.Comma(int64(stats.failed)),
		humanize.Comma(int64(stats.skipped)),
		time.Since(start).Round(time.Millisecond))))

	if err != nil {
		return err
	}
	if stats.failed > 0 {
		return fmt.Errorf("%d of %d lines failed", stats.failed, stats.lines)
	}
	return nil
}

type blockOptions struct {
	workers  int
	markdown bool
	// language is looked up again for every block.
	language func() string
}

// convertBlocks reads in line by line and converts it in blocks of
// batchBlockSize lines, handing each block's results to write in input
// order.
func convertBlocks(
	ctx context.Context,
	svc *phonemes.Service,
	in io.Reader,
	opts blockOptions,
	write func([]phonemes.LineResult) error,
) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	offset := 0
	block := make([]string, 0, batchBlockSize)

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		if opts.markdown {
			for i := range block {
				block[i] = segment.StripMarkdown(block[i])
			}
		}
		results, err := svc.Batch(ctx, block, opts.language(), opts.workers)
		for i := range results {
			results[i].Line += offset
		}
		offset += len(block)
		block = block[:0]
		if err != nil {
			return err
		}
		return write(results)
	}

	for scanner.Scan() {
		block = append(block, scanner.Text())
		if len(block) == batchBlockSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to read input: %w", err)
	}
	return flush()
}

func writePlain(out, errOut io.Writer, results []phonemes.LineResult) error {
	for _, r := range results {
		if r.Err != nil {
			log.Warn("line failed", "line", r.Line, "error", r.Err)
			fmt.Fprintln(errOut, errorText(fmt.Sprintf("line %d: %v", r.Line, r.Err)))
		}
		if _, err := fmt.Fprintln(out, r.Phonemes); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}
	return nil
}

func batchInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// watchLanguage reloads the config file when it changes and switches later
// blocks to the new language.
func watchLanguage(lang *atomic.Pointer[string]) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		reloaded, err := config.Load(viper.GetViper())
		if err != nil {
			log.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}
		if current := *lang.Load(); reloaded.Language != current {
			log.Info("language changed", "from", current, "to", reloaded.Language)
			lang.Store(&reloaded.Language)
		}
	})
	viper.WatchConfig()
}

// serveMetrics exposes registry on addr/metrics until the returned function
// is called.
func serveMetrics(addr string, registry *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 4, "conversions in flight at once")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 0, "engine calls per second (0 means unlimited)")
	batchCmd.Flags().StringVar(&batchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	batchCmd.Flags().BoolVarP(&batchTable, "table", "t", false, "print a table instead of one line per input (default when stdout is a terminal)")

	_ = viper.BindPFlag("batch.workers", batchCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("batch.rate", batchCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("batch.metrics_addr", batchCmd.Flags().Lookup("metrics-addr"))
}
