package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/espeak-phonemizer/internal/cache"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the phoneme cache",
		Long:  paragraph(fmt.Sprintf("\nConverted text is cached on disk so repeated input skips the engine. Use %s to see what it holds.", keyword("phonemize cache stats"))),
		Args:  cobra.NoArgs,
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and entry count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(func(m *cache.Manager) error {
				printCacheStats(cmd.OutOrStdout(), m.Stats(), cfg.Cache.Enabled, cfg.Cache.TTL)
				return nil
			})
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(func(m *cache.Manager) error {
				before := m.Stats().Disk
				if err := m.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s entries (%s)\n",
					humanize.Comma(before.Items), humanize.IBytes(uint64(before.Size))) //nolint:gosec
				return nil
			})
		},
	}

	cachePruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Remove entries older than the configured TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(func(m *cache.Manager) error {
				removed := m.Cleanup()
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s expired entries\n", humanize.Comma(int64(removed)))
				return nil
			})
		},
	}
)

// withCache opens the configured cache, runs fn and closes it again. It
// works even when conversions are set to skip the cache.
func withCache(fn func(*cache.Manager) error) error {
	m, err := newCacheManager(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("unable to close cache", "error", err)
		}
	}()
	return fn(m)
}

func printCacheStats(w io.Writer, s cache.ManagerStats, enabled bool, ttl time.Duration) {
	state := keyword("enabled")
	if !enabled {
		state = faint("disabled")
	}

	fmt.Fprintln(w, label("Cache")+state)
	fmt.Fprintln(w, label("Directory")+s.Dir)
	fmt.Fprintln(w, label("Entries")+humanize.Comma(s.Disk.Items))
	fmt.Fprintln(w, label("Size")+fmt.Sprintf("%s of %s",
		humanize.IBytes(uint64(s.Disk.Size)),      //nolint:gosec
		humanize.IBytes(uint64(s.Disk.Capacity)))) //nolint:gosec
	if ttl > 0 {
		fmt.Fprintln(w, label("TTL")+ttl.String())
	} else {
		fmt.Fprintln(w, label("TTL")+"none")
	}
	if !s.Disk.LastEvict.IsZero() {
		fmt.Fprintln(w, label("Last evict")+humanize.Time(s.Disk.LastEvict))
	}
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cachePruneCmd)
}
