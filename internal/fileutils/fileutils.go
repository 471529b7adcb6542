// Package fileutils provides the file operations shared by the import, export
// and settings code.
package fileutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxInputBytes bounds how much of a statement file is read.
const MaxInputBytes int64 = 10 << 20

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureParentDir creates the directory holding filePath if it doesn't exist.
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if DirectoryExists(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// ReadFile reads a whole file, refusing directories and files larger than
// limit bytes. A limit of zero or less means MaxInputBytes.
func ReadFile(filePath string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxInputBytes
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filePath)
	}
	if info.Size() > limit {
		return nil, fmt.Errorf("%s is larger than %d bytes", filePath, limit)
	}

	f, err := os.Open(filePath) // #nosec G304 -- path chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// ListFilesWithExtension returns the files under dirPath whose extension
// matches extension, ignoring case, in lexical order.
func ListFilesWithExtension(dirPath, extension string) ([]string, error) {
	if !DirectoryExists(dirPath) {
		return nil, fmt.Errorf("directory does not exist: %s", dirPath)
	}

	var files []string
	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// ExpandPaths resolves a mix of files and directories into a list of files.
// Files are kept as given; directories contribute their files with the given
// extension. Duplicates are dropped and the order of the arguments is kept.
func ExpandPaths(paths []string, extension string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		files, err := ListFilesWithExtension(p, extension)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no %s files in %s", extension, p)
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
