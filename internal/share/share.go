// Package share delivers finished try-on images to the user. A Sharer is
// a delivery channel; when none is available or the channel fails, the
// image falls back to a uuid-named file in a local share directory.
package share

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// Sharer delivers a finished image over some platform channel.
type Sharer interface {
	// Share delivers the image and returns a user-facing location
	// (path, URL) when it has one.
	Share(ctx context.Context, img image.Image) (string, error)
}

// DirSharer saves images as uuid-named PNG files in a directory. It is the
// default channel and also serves as the fallback for failed channels.
type DirSharer struct {
	Dir string
}

func (d DirSharer) Share(_ context.Context, img image.Image) (string, error) {
	if d.Dir == "" {
		return "", &pipeline.Error{Kind: pipeline.KindShare, Op: "share image",
			Err: fmt.Errorf("no share directory configured")}
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", &pipeline.Error{Kind: pipeline.KindShare, Op: "share image",
			Err: fmt.Errorf("create share directory: %w", err)}
	}
	path := filepath.Join(d.Dir, uuid.NewString()+".png")
	if err := utils.SavePNG(path, img); err != nil {
		return "", &pipeline.Error{Kind: pipeline.KindShare, Op: "share image",
			Err: err}
	}
	return path, nil
}

// Deliver tries the primary channel and falls back to a local save in
// fallbackDir when the primary is nil or fails. The returned bool reports
// whether the primary channel succeeded.
func Deliver(ctx context.Context, primary Sharer, img image.Image, fallbackDir string) (string, bool, error) {
	if primary != nil {
		if loc, err := primary.Share(ctx, img); err == nil {
			return loc, true, nil
		}
	}
	loc, err := DirSharer{Dir: fallbackDir}.Share(ctx, img)
	return loc, false, err
}
