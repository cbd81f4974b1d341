package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "encre",
	Short: "Color-pipeline and dithering engine for multi-color e-paper displays",
	Long: `encre — converts arbitrary images into palette-indexed rasters for
multi-color electronic-paper displays.

Builds a convex-hull description of a panel's reachable color gamut, tone
maps and gamut-clamps the source image into it, Floyd-Steinberg dithers
the result, and emits the compact on-wire/on-disk "encre" format the
display controller consumes.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"encre %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[encre] "+format+"\n", args...)
	}
}
