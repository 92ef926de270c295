package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geuryroustand/nail-design-try-on/internal/batch"
)

// batchCmd applies one design set to many target photos.
var batchCmd = &cobra.Command{
	Use:   "batch [source photo] [targets...]",
	Short: "Apply designs from one photo to many target photos",
	Long: `Extract the nail designs from the source photo once, then composite
them onto every target photo. Targets may be files or directories; one
result image is written per target.

Examples:
  nailtry batch painted.jpg photos/ --output-dir results/
  nailtry batch painted.jpg a.jpg b.jpg --workers 8 --continue-on-error
  nailtry batch painted.jpg photos/ --recursive --include "hand_*.png"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	appCfg := GetConfig()

	cfg := batch.DefaultConfig()
	cfg.SourcePath = args[0]
	cfg.Targets = args[1:]
	cfg.Pipeline = appCfg.ToPipelineConfig()

	cfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
	cfg.Recursive, _ = cmd.Flags().GetBool("recursive")
	cfg.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	cfg.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	cfg.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	cfg.Mirror, _ = cmd.Flags().GetBool("mirror")
	cfg.Quiet, _ = cmd.Flags().GetBool("quiet")

	cfg.Workers = appCfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("model-path") {
		cfg.Pipeline.Hand.ModelPath, _ = cmd.Flags().GetString("model-path")
	}

	result, runErr := batch.Run(context.Background(), cfg, nil)
	if result != nil {
		format, _ := cmd.Flags().GetString("format")
		out, err := batch.FormatResult(result, format)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
	}
	return runErr
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().String("output-dir", "tryon-results", "directory for result images")
	batchCmd.Flags().StringP("format", "f", "text", "summary format (text, json)")
	batchCmd.Flags().Int("workers", 4, "number of parallel compositing workers")
	batchCmd.Flags().Bool("recursive", false, "recurse into target directories")
	batchCmd.Flags().StringSlice("include", nil, "glob patterns for target filenames to include")
	batchCmd.Flags().StringSlice("exclude", nil, "glob patterns for target filenames to exclude")
	batchCmd.Flags().Bool("continue-on-error", false, "keep processing after per-target failures")
	batchCmd.Flags().Bool("mirror", false, "flip inputs horizontally before detection")
	batchCmd.Flags().BoolP("quiet", "q", false, "suppress per-target progress logging")
	batchCmd.Flags().String("model-path", "", "override hand landmark model path")
}
