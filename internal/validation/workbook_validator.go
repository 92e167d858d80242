// Package validation checks workbook inputs before they reach the analysis
// engine and resolves the file metadata used for cache fingerprinting.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// allowed workbook extensions
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
}

// FileInfo is the resolved workbook identity used for cache keys
type FileInfo struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// WorkbookValidator validates workbook files handed to the engine
type WorkbookValidator struct {
	logger  *slog.Logger
	maxSize int64
}

// NewWorkbookValidator creates a validator with a file size bound
func NewWorkbookValidator(logger *slog.Logger, maxSize int64) *WorkbookValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookValidator{
		logger:  logger.With(slog.String("component", "workbook_validator")),
		maxSize: maxSize,
	}
}

// Validate checks that path names an existing, readable, non-empty workbook
// within the size bound and returns its resolved identity.
func (v *WorkbookValidator) Validate(path string) (*FileInfo, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		v.logger.Error("workbook does not exist", slog.String("file", resolved))
		return nil, fmt.Errorf("workbook %s does not exist", resolved)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat workbook %s: %w", resolved, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a workbook", resolved)
	}

	ext := strings.ToLower(filepath.Ext(resolved))
	if !workbookExtensions[ext] {
		v.logger.Error("unsupported workbook extension",
			slog.String("file", resolved),
			slog.String("extension", ext))
		return nil, fmt.Errorf("unsupported workbook extension %q", ext)
	}

	if info.Size() == 0 {
		return nil, fmt.Errorf("workbook %s is empty", resolved)
	}
	if v.maxSize > 0 && info.Size() > v.maxSize {
		v.logger.Error("workbook exceeds size bound",
			slog.String("file", resolved),
			slog.Int64("size", info.Size()),
			slog.Int64("max", v.maxSize))
		return nil, fmt.Errorf("workbook %s exceeds size bound (%d > %d bytes)",
			resolved, info.Size(), v.maxSize)
	}

	// readable at all
	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("workbook %s is not readable: %w", resolved, err)
	}
	f.Close()

	v.logger.Debug("workbook validated",
		slog.String("file", resolved),
		slog.Int64("size", info.Size()))

	return &FileInfo{
		Path:    resolved,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}
