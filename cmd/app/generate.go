package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/config"
	"github.com/libertyplace/rentapp/internal/exports"
	"github.com/libertyplace/rentapp/internal/models"
	"github.com/libertyplace/rentapp/internal/validation"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var composeFlag = &Flag{}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Render application bundles to PDF",
	Example: `  rentapp compose -i bundle.json -o application.pdf
  rentapp compose -i bundle.json --datauri
  rentapp compose -b bundles.txt -d out/ -x 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := composeFlag.resolve(); err != nil {
			return err
		}
		startTime := time.Now()
		process := newGenerateProcess(cfg)
		if err := process.processCompose(cmd.Context(), composeFlag); err != nil {
			return err
		}
		internal.SuccessLog("Completed in %v", time.Since(startTime))
		return nil
	},
}

func init() {
	composeCmd.Flags().StringVarP(&composeFlag.Input, "input", "i", "", "bundle JSON file to render")
	composeCmd.Flags().StringVarP(&composeFlag.Output, "output", "o", "", "output PDF path (default: input name with .pdf)")
	composeCmd.Flags().StringVarP(&composeFlag.BatchFile, "batch", "b", "", "file listing bundle paths, one per line")
	composeCmd.Flags().StringVarP(&composeFlag.OutputDir, "dir", "d", "", "output directory for batch mode (default: next to each bundle)")
	composeCmd.Flags().IntVarP(&composeFlag.MaxConcurrent, "concurrency", "x", 4, "bundles rendered at once in batch mode")
	composeCmd.Flags().BoolVar(&composeFlag.DataURI, "datauri", false, "print a data:application/pdf URI instead of writing a file")
	composeCmd.Flags().BoolVarP(&composeFlag.Overwrite, "force", "f", false, "overwrite existing PDFs")
}

// newComposer applies the configured letterhead to the default theme.
func newComposer(c *config.Config) *exports.Composer {
	theme := exports.DefaultTheme()
	if c != nil {
		if c.Document.OrganizationName != "" {
			theme.Organization.Name = c.Document.OrganizationName
		}
		if len(c.Document.AddressLines) > 0 {
			theme.Organization.AddressLines = c.Document.AddressLines
		}
		if c.Document.Title != "" {
			theme.Organization.Title = c.Document.Title
		}
	}
	return exports.NewComposer(exports.WithTheme(theme), exports.WithLogger(internal.GetDefaultLogger()))
}

type generateProcess struct {
	composer  *exports.Composer
	fileCache sync.Map
}

func newGenerateProcess(c *config.Config) *generateProcess {
	return &generateProcess{composer: newComposer(c)}
}

func (gp *generateProcess) processCompose(ctx context.Context, flag *Flag) error {
	if len(flag.Inputs) < 1 {
		return gp.processSingle(flag)
	}
	return gp.processBatch(ctx, flag)
}

func (gp *generateProcess) processSingle(flag *Flag) error {
	bundle, err := readBundle(flag.Input)
	if err != nil {
		return err
	}

	if flag.DataURI {
		uri, err := gp.composer.ComposeDataURI(bundle)
		if err != nil {
			return err
		}
		fmt.Println(uri)
		return nil
	}

	output := flag.Output
	if output == "" {
		output = pdfName(flag.Input, "")
	}
	return gp.composeFile(bundle, output, flag.Overwrite)
}

func (gp *generateProcess) processBatch(ctx context.Context, flag *Flag) error {
	if flag.OutputDir != "" {
		if err := os.MkdirAll(flag.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(flag.MaxConcurrent)
	errChan := make(chan error, len(flag.Inputs))

	var (
		mu        sync.Mutex
		generated []string
	)
	internal.InfoLog("Rendering %d bundles with %d workers", len(flag.Inputs), flag.MaxConcurrent)

	for _, input := range flag.Inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bundle, err := readBundle(input)
			if err == nil {
				output := pdfName(input, flag.OutputDir)
				if err = gp.composeFile(bundle, output, flag.Overwrite); err == nil {
					mu.Lock()
					generated = append(generated, output)
					mu.Unlock()
				}
			}
			if err != nil {
				errChan <- fmt.Errorf("error processing %s: %w", input, err)
			}
			return nil
		})
	}

	_ = g.Wait()
	close(errChan)

	var errs []error
	for e := range errChan {
		errs = append(errs, e)
	}
	internal.InfoLog("[SUMMARY] Generated %d of %d PDF files", len(generated), len(flag.Inputs))
	if len(errs) > 0 {
		return fmt.Errorf("completed with %d errors: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

func (gp *generateProcess) composeFile(bundle *models.Bundle, output string, overwrite bool) error {
	if !overwrite && gp.isFileExists(output) {
		internal.InfoLog("File already exists, skipping: %s", output)
		return nil
	}

	pdf, err := gp.composer.Compose(bundle)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, pdf, 0o644); err != nil {
		return fmt.Errorf("error saving PDF: %w", err)
	}
	gp.fileCache.Store(output, true)
	internal.SuccessLog("Saved to %s", output)
	return nil
}

func (gp *generateProcess) isFileExists(filename string) bool {
	if val, ok := gp.fileCache.Load(filename); ok {
		return val.(bool)
	}
	_, err := os.Stat(filename)
	exists := err == nil
	gp.fileCache.Store(filename, exists)
	return exists
}

// readBundle loads a bundle file and rejects it when required fields are
// missing.
func readBundle(path string) (*models.Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	var bundle models.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle %s: %w", path, err)
	}

	res, err := validation.ValidateBundle(&bundle)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, res.Err()
	}
	return &bundle, nil
}

func pdfName(input, dir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".pdf"
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}
