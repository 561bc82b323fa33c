package dictionary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat is the kind of file found in a data directory
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // newline separated word list
	FormatJSON               // dot pattern table
	FormatYAML               // dot pattern table
)

// ErrUnsupportedFormat is returned for files whose extension is not known.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatInfo contains metadata about a data file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Word List",
		Extensions:  []string{".txt"},
		MinSize:     0,
	},
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON Dot Table",
		Extensions:  []string{".json"},
		MinSize:     2, // {}
	},
	FormatYAML: {
		Format:      FormatYAML,
		Description: "YAML Dot Table",
		Extensions:  []string{".yaml", ".yml"},
		MinSize:     1,
	},
}

// ValidateFileFormat checks that filename exists, is a regular file and
// matches the expected format.
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := GetFormatInfo(expectedFormat)
	if !exists {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			log.Debugf("File %s validated as %s", filename, formatInfo.Description)
			return nil
		}
	}
	return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
		filename, ext, formatInfo.Description, formatInfo.Extensions)
}

// DetectFileFormat picks the format of filename from its extension and
// validates it.
func DetectFileFormat(filename string) (FileFormat, error) {
	format := formatForExt(filepath.Ext(filename))
	if format == FormatUnknown {
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err := ValidateFileFormat(filename, format); err != nil {
		return FormatUnknown, err
	}
	return format, nil
}

func formatForExt(ext string) FileFormat {
	ext = strings.ToLower(ext)
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

func formatName(format FileFormat) string {
	if info, ok := GetFormatInfo(format); ok {
		return info.Description
	}
	return "unknown format"
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
