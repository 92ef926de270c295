package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// extractCmd lifts nail designs from a painted-hand photo.
var extractCmd = &cobra.Command{
	Use:   "extract [source photo]",
	Short: "Extract nail designs from a painted hand photo",
	Long: `Detect the hand in a photo, estimate per-finger nail geometry, and
extract each painted nail design onto its own transparent canvas.

The design canvases are written to the output directory as PNG files named
after the finger, alongside a designs.json with the geometry metadata.

Examples:
  nailtry extract painted.jpg
  nailtry extract painted.jpg --output-dir designs/ --min-quality 0.5
  nailtry extract selfie.jpg --mirror`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output-dir")
	mirror, _ := cmd.Flags().GetBool("mirror")
	format, _ := cmd.Flags().GetString("format")

	pl, err := buildPipelineFromFlags(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = pl.Close() }()

	src, _, err := utils.LoadImage(args[0])
	if err != nil {
		return fmt.Errorf("load source photo: %w", err)
	}
	var source image.Image = src
	if mirror {
		source = utils.MirrorImage(source)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pl.Config().Hand.Timeout+time.Minute)
	defer cancel()

	res, err := pl.Extract(ctx, source)
	if err != nil {
		return fmt.Errorf("extract designs: %w", err)
	}

	type designMeta struct {
		Finger   string  `json:"finger"`
		File     string  `json:"file"`
		Rotation float64 `json:"rotation"`
		Length   float64 `json:"length"`
		Width    float64 `json:"width"`
		Quality  float64 `json:"quality"`
	}

	metas := make([]designMeta, 0, len(res.Designs))
	for finger, d := range res.Designs {
		file := filepath.Join(outputDir, finger.String()+".png")
		if err := utils.SavePNG(file, d.Image); err != nil {
			return fmt.Errorf("save design for %s: %w", finger.String(), err)
		}
		metas = append(metas, designMeta{
			Finger:   finger.String(),
			File:     file,
			Rotation: d.Rotation,
			Length:   d.Length,
			Width:    d.Width,
			Quality:  d.Quality,
		})
	}

	metaPath := filepath.Join(outputDir, "designs.json")
	data, err := json.MarshalIndent(metas, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal design metadata: %w", err)
	}
	if err := writeFileThroughDir(metaPath, data); err != nil {
		return fmt.Errorf("write design metadata: %w", err)
	}

	switch format {
	case "json":
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	default:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d design(s) to %s\n", len(metas), outputDir)
		for _, m := range metas {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-6s quality=%.2f size=%.0fx%.0f -> %s\n",
				m.Finger, m.Quality, m.Width, m.Length, m.File)
		}
	}
	return nil
}

// buildPipelineFromFlags assembles a pipeline from the loaded configuration
// plus any command-level overrides.
func buildPipelineFromFlags(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	cfg := GetConfig()
	pCfg := cfg.ToPipelineConfig()

	b := pipeline.NewBuilder().WithConfig(pCfg).WithModelPath(pCfg.Hand.ModelPath)

	if cmd.Flags().Changed("model-path") {
		path, _ := cmd.Flags().GetString("model-path")
		b = b.WithModelPath(path)
	}
	if cmd.Flags().Changed("complexity") {
		level, _ := cmd.Flags().GetInt("complexity")
		b = b.WithComplexity(level)
	}
	if cmd.Flags().Changed("detection-confidence") {
		c, _ := cmd.Flags().GetFloat64("detection-confidence")
		b = b.WithDetectionConfidence(c)
	}
	if cmd.Flags().Changed("min-quality") {
		q, _ := cmd.Flags().GetFloat64("min-quality")
		b = b.WithMinQuality(q)
	}
	if cmd.Flags().Changed("opacity") {
		o, _ := cmd.Flags().GetFloat64("opacity")
		b = b.WithOpacity(o)
	}

	pl, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("initialize pipeline: %w", err)
	}
	return pl, nil
}

func writeFileThroughDir(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("model-path", "", "override hand landmark model path")
	cmd.Flags().Int("complexity", 1, "landmark model complexity (0 = lite, 1 = full)")
	cmd.Flags().Float64("detection-confidence", 0.7, "hand presence confidence floor (0..1)")
	cmd.Flags().Float64("min-quality", 0.3, "extraction quality floor (0..1)")
	cmd.Flags().Bool("mirror", false, "flip the input horizontally before detection")
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addPipelineFlags(extractCmd)
	extractCmd.Flags().String("output-dir", "designs", "directory for extracted design canvases")
	extractCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}
