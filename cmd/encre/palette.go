package cmd

import (
	"fmt"

	"github.com/AnyUserName/encre/internal/palette"
	"github.com/spf13/cobra"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "List and inspect builtin device palettes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPalette,
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}

func runPalette(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, name := range palette.Names() {
			pal := palette.ByName(name)
			fmt.Printf("  %-20s %d colors, %d bits/pixel\n", name, pal.Size(), pal.BitsPerColor())
		}
		return nil
	}

	name := args[0]
	pal := palette.ByName(name)
	if pal == nil {
		return fmt.Errorf("unknown palette %q", name)
	}

	fmt.Printf("  %s\n", name)
	fmt.Printf("  colors:       %d\n", pal.Size())
	fmt.Printf("  bits/pixel:   %d\n", pal.BitsPerColor())
	fmt.Printf("  gray line:    [%.2f, %.2f]\n", pal.Gray.Lo, pal.Gray.Hi)
	fmt.Printf("  max chroma:   %.2f\n", pal.MaxChroma)
	fmt.Println("  vertices (Oklab):")
	for _, v := range pal.Vertices {
		fmt.Printf("    L=%6.2f a=%6.2f b=%6.2f\n", v.L, v.A, v.B)
	}
	return nil
}
