package manifest

// Manifest is the top-level output of an encre batch build.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers     int `json:"workers"`
	PoolEntryKB int `json:"pool_entry_kb"` // approximate peak per-worker raster memory, in KB
}

// Asset describes a single source image and the encre output generated
// from it.
type Asset struct {
	Original    OriginalInfo `json:"original"`
	ThumbHash   string       `json:"thumbhash"`            // base64-encoded thumbhash bytes
	AspectRatio float64      `json:"aspect_ratio"`         // width / height
	AvgColor    *[3]uint8    `json:"avg_color,omitempty"`  // [R,G,B] 0-255, optional
	Encre       EncreInfo    `json:"encre"`
	Preview     *Preview     `json:"preview,omitempty"`
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
}

// EncreInfo describes the generated .encre output file.
type EncreInfo struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PaletteName  string `json:"palette_name"`
	PaletteSize  int    `json:"palette_size"`
	BitsPerColor int    `json:"bits_per_color"`
	Rotation     int    `json:"rotation"`
	Size         int64  `json:"size"` // bytes on disk
	Hash         string `json:"hash"` // first 16 hex chars of xxhash64
	Path         string `json:"path"` // relative to base_path
}

// Preview is the optional human-viewable rendering of the dithered output.
type Preview struct {
	Format string `json:"format"` // "avif", "webp", "jpeg", "png"
	Size   int64  `json:"size"`
	Hash   string `json:"hash"`
	Path   string `json:"path"`
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalAssets      int   `json:"total_assets"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
