package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/AnyUserName/encre/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a built asset directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	// If path is a directory, look for manifest inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "encre.manifest.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	printStats(&m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	if m.BuildInfo != nil {
		rasterMB := float64(m.BuildInfo.Workers*m.BuildInfo.PoolEntryKB) / 1024
		fmt.Printf("  Workers:          %d\n", m.BuildInfo.Workers)
		fmt.Printf("  Raster footprint: %d × %d KB ≈ %.1f MB\n",
			m.BuildInfo.Workers, m.BuildInfo.PoolEntryKB, rasterMB)
	} else {
		workers := runtime.NumCPU()
		rasterMB := float64(workers*9000) / 1024
		fmt.Printf("  Workers (est):    %d  (rasters ≈ %.1f MB)\n", workers, rasterMB)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total assets:     %d\n", s.TotalAssets)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))

	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Printf("  Compression:      %.1f%% of original\n", ratio)
	}
	fmt.Println()

	// Per-palette breakdown.
	paletteStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, a := range m.Assets {
		ps := paletteStats[a.Encre.PaletteName]
		ps.count++
		ps.bytes += a.Encre.Size
		paletteStats[a.Encre.PaletteName] = ps
	}

	fmt.Println("  Palette breakdown:")
	var names []string
	for name := range paletteStats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ps := paletteStats[name]
		fmt.Printf("    %-20s  %4d files  %s\n", name, ps.count, formatBytes(ps.bytes))
	}
	fmt.Println()

	// Per-bits-per-color breakdown.
	bitsStats := map[int]int{}
	previewCount := 0
	for _, a := range m.Assets {
		bitsStats[a.Encre.BitsPerColor]++
		if a.Preview != nil {
			previewCount++
		}
	}
	var bitsList []int
	for b := range bitsStats {
		bitsList = append(bitsList, b)
	}
	sort.Ints(bitsList)
	fmt.Println("  Bits-per-color breakdown:")
	for _, b := range bitsList {
		fmt.Printf("    %d bpp    %4d assets\n", b, bitsStats[b])
	}
	fmt.Println()

	fmt.Printf("  Preview coverage: %d / %d assets\n", previewCount, len(m.Assets))

	// Warnings.
	var warnings []string
	for key, a := range m.Assets {
		if a.Encre.Path == "" {
			warnings = append(warnings, fmt.Sprintf("asset %q has no encre output", key))
		}
		if a.ThumbHash == "" {
			warnings = append(warnings, fmt.Sprintf("asset %q missing thumbhash", key))
		}
	}
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}
