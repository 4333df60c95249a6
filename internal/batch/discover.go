// Package batch orchestrates analysis of whole scenario ensembles: it
// discovers output databases, partitions them over a fixed worker pool,
// extracts one aggregated row per run, and merges the partial tables in
// worker order.
package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// OutputSuffix marks simulation output databases during discovery.
const OutputSuffix = ".sqlite"

// Discover walks root recursively and returns every output database whose
// file name contains filter. The walk is lexical, so the list is
// deterministic for a given tree. maxFiles > 0 caps the list after
// ordering.
func Discover(root, filter string, maxFiles int) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, OutputSuffix) && strings.Contains(name, filter) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: discover under %s: %w", root, err)
	}
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files, nil
}
