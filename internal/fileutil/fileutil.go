// Package fileutil writes command output files.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputMode is the file permission mode for compiled schema files. They
// are meant to be consumed by other tools and users.
const OutputMode os.FileMode = 0o644

// RejectSymlink returns an error if path is an existing symlink, so output
// cannot be redirected to an unintended location.
func RejectSymlink(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fileutil: checking output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("fileutil: refusing to write to symlink: %s", path)
	}
	return nil
}

// WriteOutput writes data to path with OutputMode after rejecting symlinks.
func WriteOutput(path string, data []byte) error {
	cleaned := filepath.Clean(path)
	if err := RejectSymlink(cleaned); err != nil {
		return err
	}
	if err := os.WriteFile(cleaned, data, OutputMode); err != nil {
		return fmt.Errorf("fileutil: writing %s: %w", cleaned, err)
	}
	return nil
}
