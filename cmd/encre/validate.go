package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/encre/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate an encre manifest and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	baseDir := filepath.Dir(manifestPath)
	errors := validateManifest(&m, baseDir)

	if len(errors) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d assets — all files present\n", m.Stats.TotalAssets)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	// Check version.
	if m.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	// Check each asset.
	for key, asset := range m.Assets {
		// Check original dimensions.
		if asset.Original.Width <= 0 || asset.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, asset.Original.Width, asset.Original.Height))
		}

		// Check thumbhash.
		if asset.ThumbHash == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing thumbhash", key))
		}

		// Check aspect ratio.
		if asset.AspectRatio <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid aspect ratio %.4f", key, asset.AspectRatio))
		}

		// Check the encre output.
		if asset.Encre.Path == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing encre path", key))
		} else {
			if asset.Encre.Width <= 0 || asset.Encre.Height <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q: invalid encre dimensions %dx%d",
					key, asset.Encre.Width, asset.Encre.Height))
			}
			if asset.Encre.PaletteName == "" {
				errs = append(errs, fmt.Sprintf("asset %q: missing palette name", key))
			}
			if asset.Encre.Hash == "" {
				errs = append(errs, fmt.Sprintf("asset %q: missing encre hash", key))
			}

			fullPath := filepath.Join(baseDir, asset.Encre.Path)
			info, err := os.Stat(fullPath)
			if err != nil {
				errs = append(errs, fmt.Sprintf("asset %q: encre file not found: %s", key, asset.Encre.Path))
			} else if asset.Encre.Size > 0 && info.Size() != asset.Encre.Size {
				errs = append(errs, fmt.Sprintf("asset %q: encre size mismatch: manifest=%d, disk=%d",
					key, asset.Encre.Size, info.Size()))
			}
		}

		// Check the optional preview.
		if asset.Preview != nil {
			if asset.Preview.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q: preview present but missing path", key))
			} else {
				fullPath := filepath.Join(baseDir, asset.Preview.Path)
				info, err := os.Stat(fullPath)
				if err != nil {
					errs = append(errs, fmt.Sprintf("asset %q: preview file not found: %s", key, asset.Preview.Path))
				} else if asset.Preview.Size > 0 && info.Size() != asset.Preview.Size {
					errs = append(errs, fmt.Sprintf("asset %q: preview size mismatch: manifest=%d, disk=%d",
						key, asset.Preview.Size, info.Size()))
				}
			}
		}
	}

	// Check for duplicate output paths across assets.
	seenPaths := map[string]string{}
	for key, asset := range m.Assets {
		for _, p := range []string{asset.Encre.Path, previewPath(asset)} {
			if p == "" {
				continue
			}
			if other, ok := seenPaths[p]; ok {
				errs = append(errs, fmt.Sprintf("duplicate output path %q: assets %q and %q", p, other, key))
			}
			seenPaths[p] = key
		}
	}

	// Verify stats consistency.
	assetCount := len(m.Assets)
	if m.Stats.TotalAssets != assetCount {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, assetCount))
	}

	return errs
}

func previewPath(a manifest.Asset) string {
	if a.Preview == nil {
		return ""
	}
	return a.Preview.Path
}
