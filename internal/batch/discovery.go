package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// discoverTargetImages resolves the target arguments to a sorted list of
// image files. Directory arguments are expanded; plain files are taken as-is
// when they pass the pattern filters.
func discoverTargetImages(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var targets []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			targets = append(targets, files...)
		} else if includeFile(arg, includePatterns, excludePatterns) {
			targets = append(targets, arg)
		}
	}

	sort.Strings(targets)
	return targets, nil
}

func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if utils.IsSupportedImage(path) && includeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

// includeFile applies exclude patterns first, then include patterns. With no
// include patterns everything not excluded passes.
func includeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAny(path, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAny(path, includePatterns)
}

func matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, p := range patterns {
		if ok, err := filepath.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}
