package site2pdf

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-site2pdf/internal/fileutil"
)

// PDFMerger concatenates PDF files with pdfcpu.
type PDFMerger struct {
	logger *slog.Logger
}

// NewPDFMerger creates a merger. A nil logger discards output.
func NewPDFMerger(logger *slog.Logger) *PDFMerger {
	if logger == nil {
		logger = discardLogger()
	}
	return &PDFMerger{logger: logger}
}

// pdfConfig relaxes validation: browsers emit PDFs that strict mode rejects.
func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// MergeFiles writes the valid inputs, in order, to outputPath. Missing,
// empty or unreadable inputs are skipped. When nothing is left it returns
// ErrNoPages.
func (m *PDFMerger) MergeFiles(paths []string, outputPath string) error {
	valid := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || info.Size() == 0 {
			m.logger.Debug("skipping missing merge input", "path", p)
			continue
		}
		if err := api.ValidateFile(p, pdfConfig()); err != nil {
			m.logger.Warn("skipping invalid merge input", "path", p, "error", err)
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return ErrNoPages
	}

	if len(valid) == 1 {
		return copyFile(valid[0], outputPath)
	}
	if err := api.MergeCreateFile(valid, outputPath, false, pdfConfig()); err != nil {
		return fmt.Errorf("merging %d files: %w", len(valid), err)
	}
	return nil
}

// PageCount returns the number of pages of the PDF at path.
func (m *PDFMerger) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, pdfConfig())
}

func copyFile(src, dst string) error {
	if err := fileutil.CopyFile(src, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return nil
}
