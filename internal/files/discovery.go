package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"datawash/internal/reader"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Format  string
	Size    int64
	ModTime time.Time
}

// Discovery resolves CLI input arguments into tabular files. Arguments may
// be plain paths, directories, or glob patterns; only files the reader
// supports (csv, xls, xlsx) are returned.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative arguments are
// resolved against basePath; an empty basePath means the working directory.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// Resolve expands every argument and returns the combined file list, sorted
// by path with duplicates removed. Arguments that match nothing are an
// error: a silent empty run hides typos.
func (d *Discovery) Resolve(args []string) ([]FileInfo, error) {
	seen := make(map[string]bool)
	var files []FileInfo

	for _, arg := range args {
		matches, err := d.resolveOne(arg)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no supported files match %q", arg)
		}
		for _, f := range matches {
			if !seen[f.Path] {
				seen[f.Path] = true
				files = append(files, f)
			}
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// resolveOne expands a single argument: directories list their supported
// files, glob patterns expand, and anything else is treated as a file path.
func (d *Discovery) resolveOne(arg string) ([]FileInfo, error) {
	full := arg
	if !filepath.IsAbs(arg) && d.basePath != "" {
		full = filepath.Join(d.basePath, arg)
	}

	if info, err := os.Stat(full); err == nil {
		if info.IsDir() {
			return d.FindTabularFiles(full)
		}
		f, ok := statFile(full)
		if !ok {
			return nil, fmt.Errorf("unsupported file type: %s", full)
		}
		return []FileInfo{f}, nil
	}

	if strings.ContainsAny(arg, "*?[") {
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}
		var files []FileInfo
		for _, match := range matches {
			if f, ok := statFile(match); ok {
				files = append(files, f)
			}
		}
		return files, nil
	}

	return nil, fmt.Errorf("no such file: %s", full)
}

// FindTabularFiles finds all supported tabular files in the specified
// directory, sorted by modification time (oldest first). Spreadsheet lock
// files (~$ prefix) are skipped.
func (d *Discovery) FindTabularFiles(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) && d.basePath != "" {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		if f, ok := statFile(filepath.Join(fullPath, entry.Name())); ok {
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// statFile builds a FileInfo for path when it is a supported tabular file.
func statFile(path string) (FileInfo, bool) {
	format, ok := reader.DetectFormat(path)
	if !ok {
		return FileInfo{}, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return FileInfo{}, false
	}
	return FileInfo{
		Path:    path,
		Name:    filepath.Base(path),
		Format:  format,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
