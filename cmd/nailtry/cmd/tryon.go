package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/spf13/cobra"

	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
	"github.com/geuryroustand/nail-design-try-on/internal/share"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// tryonCmd runs the full source-to-target flow.
var tryonCmd = &cobra.Command{
	Use:     "tryon [source photo] [target photo]",
	Aliases: []string{"apply"},
	Short:   "Composite nail designs from one hand photo onto another",
	Long: `Extract the painted nail designs from the source photo and composite
them onto the matching fingers of the target photo.

When the target hand cannot be detected, the original target image is still
written so the caller always gets a displayable result.

Examples:
  nailtry tryon painted.jpg bare.jpg
  nailtry tryon painted.jpg bare.jpg -o result.png --opacity 0.9
  nailtry tryon painted.jpg selfie.jpg --mirror --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runTryOn,
}

func runTryOn(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	mirror, _ := cmd.Flags().GetBool("mirror")
	format, _ := cmd.Flags().GetString("format")

	pl, err := buildPipelineFromFlags(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = pl.Close() }()

	source, err := loadInputImage(args[0], mirror)
	if err != nil {
		return fmt.Errorf("load source photo: %w", err)
	}
	target, err := loadInputImage(args[1], mirror)
	if err != nil {
		return fmt.Errorf("load target photo: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pl.Config().Hand.Timeout+time.Minute)
	defer cancel()

	res, tryonErr := pl.TryOn(ctx, source, target)
	if tryonErr != nil && (res == nil || res.Image == nil) {
		return fmt.Errorf("try-on failed: %w", tryonErr)
	}

	if err := utils.SavePNG(outputPath, res.Image); err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	var sharedPath string
	if shareDir, _ := cmd.Flags().GetString("share-dir"); shareDir != "" {
		loc, _, shareErr := share.Deliver(ctx, nil, res.Image, shareDir)
		if shareErr != nil {
			return fmt.Errorf("share result: %w", shareErr)
		}
		sharedPath = loc
	}

	if format == "json" {
		summary := map[string]interface{}{
			"output":            outputPath,
			"fingers_extracted": res.FingersExtracted,
			"fingers_applied":   res.FingersApplied,
			"width":             res.Width,
			"height":            res.Height,
		}
		if sharedPath != "" {
			summary["shared"] = sharedPath
		}
		if tryonErr != nil {
			summary["error"] = tryonErr.Error()
			if kind, ok := pipeline.KindOf(tryonErr); ok {
				summary["error_kind"] = kind.String()
			}
		}
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d of %d design(s), saved to %s\n",
			res.FingersApplied, res.FingersExtracted, outputPath)
		if sharedPath != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Shared copy: %s\n", sharedPath)
		}
		if tryonErr != nil {
			if errors.Is(tryonErr, pipeline.ErrNoHandDetected) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No hand detected in the target photo; wrote the original image")
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Warning: %v\n", tryonErr)
			}
		}
	}

	if tryonErr != nil && res.FingersApplied == 0 && !degradedResultOK(cmd) {
		return fmt.Errorf("try-on incomplete: %w", tryonErr)
	}
	return nil
}

// degradedResultOK reports whether a result with zero applied fingers should
// count as success.
func degradedResultOK(cmd *cobra.Command) bool {
	ok, _ := cmd.Flags().GetBool("allow-degraded")
	return ok
}

func loadInputImage(path string, mirror bool) (image.Image, error) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, err
	}
	var out image.Image = img
	if mirror {
		out = utils.MirrorImage(out)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(tryonCmd)
	addPipelineFlags(tryonCmd)
	tryonCmd.Flags().StringP("output", "o", "tryon.png", "output image path")
	tryonCmd.Flags().StringP("format", "f", "text", "summary format (text, json)")
	tryonCmd.Flags().Float64("opacity", 0.85, "design blend opacity (0..1)")
	tryonCmd.Flags().Bool("allow-degraded", false, "exit successfully even when no design could be applied")
	tryonCmd.Flags().String("share-dir", "", "also save a uuid-named copy of the result in this directory")
}
