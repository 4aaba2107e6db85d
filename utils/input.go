package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInputMissing is the only batch-fatal error: the supplied path does not
// exist or yields zero candidate addresses.
var ErrInputMissing = errors.New("input not found")

// InputFile is one source file read as raw text.
type InputFile struct {
	Path string
	Text string
}

// textExtensions are the file types read from a directory input. A single
// file path is read regardless of extension.
var textExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".csv":  true,
}

// DiscoverInput reads a file or every text/CSV file in a directory as raw
// text. File parsing beyond that is not this layer's job; addresses are
// extracted from the raw content downstream.
func DiscoverInput(path string) ([]InputFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
	}

	if !info.IsDir() {
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return []InputFile{{Path: path, Text: string(text)}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
	}

	var files []InputFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !textExtensions[ext] {
			continue
		}
		full := filepath.Join(path, entry.Name())
		text, err := os.ReadFile(full)
		if err != nil {
			continue // unreadable files are skipped, not fatal
		}
		files = append(files, InputFile{Path: full, Text: string(text)})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no readable text files in %s", ErrInputMissing, path)
	}
	return files, nil
}
