package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/libertyplace/rentapp/internal"
)

type Flag struct {
	Input         string
	Output        string
	BatchFile     string
	Inputs        []string // bundle paths read from BatchFile
	OutputDir     string
	MaxConcurrent int
	DataURI       bool
	Overwrite     bool
}

// resolve checks flag combinations and loads the batch file.
func (f *Flag) resolve() error {
	if f.Input == "" && f.BatchFile == "" {
		return errors.New("either --input or --batch is required")
	}
	if f.Input != "" && f.BatchFile != "" {
		return errors.New("cannot use --input and --batch at the same time")
	}
	if f.MaxConcurrent < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", f.MaxConcurrent)
	}
	if f.BatchFile != "" && f.DataURI {
		internal.WarningLog("--datauri is ignored in batch mode")
		f.DataURI = false
	}

	if f.BatchFile == "" {
		return nil
	}

	file, err := os.Open(f.BatchFile)
	if err != nil {
		return fmt.Errorf("failed to open batch file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f.Inputs = append(f.Inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading batch file: %w", err)
	}
	if len(f.Inputs) == 0 {
		return errors.New("batch file is empty or lists no bundles")
	}

	// Workers would race on a shared output path.
	outputs := make(map[string]string, len(f.Inputs))
	for _, input := range f.Inputs {
		out := filepath.Clean(pdfName(input, f.OutputDir))
		if prev, ok := outputs[out]; ok {
			return fmt.Errorf("%s and %s both render to %s", prev, input, out)
		}
		outputs[out] = input
	}
	return nil
}
