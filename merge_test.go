package site2pdf

// Notes:
// - PDFMerger: inputs are minimal single-page PDFs built in the test so
//   no fixtures or browser are needed. pdfcpu's own parsing is trusted.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// minimalPDF returns a valid one-page PDF document.
func minimalPDF() []byte {
	content := "0 0 m 100 100 l S"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return []byte(b.String())
}

func writePDF(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestPDFMerger_MergeFiles - Concatenation
// ---------------------------------------------------------------------------

func TestPDFMerger_MergeFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writePDF(t, dir, pageFileName(0), minimalPDF())
	b := writePDF(t, dir, pageFileName(1), minimalPDF())
	empty := writePDF(t, dir, pageFileName(2), nil)
	garbage := writePDF(t, dir, pageFileName(3), []byte("not a pdf"))
	missing := filepath.Join(dir, pageFileName(4))

	m := NewPDFMerger(nil)
	out := filepath.Join(dir, "book.pdf")
	if err := m.MergeFiles([]string{a, empty, missing, garbage, b}, out); err != nil {
		t.Fatalf("MergeFiles() error = %v", err)
	}

	n, err := m.PageCount(out)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("merged page count = %d, want 2", n)
	}
}

func TestPDFMerger_SingleInputCopied(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writePDF(t, dir, pageFileName(0), minimalPDF())
	out := filepath.Join(dir, "book.pdf")

	if err := NewPDFMerger(nil).MergeFiles([]string{src}, out); err != nil {
		t.Fatalf("MergeFiles() error = %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(minimalPDF()) {
		t.Error("single input should be copied unchanged")
	}
}

func TestPDFMerger_SingleInputCopyFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writePDF(t, dir, pageFileName(0), minimalPDF())
	out := filepath.Join(dir, "absent", "book.pdf")

	if err := NewPDFMerger(nil).MergeFiles([]string{src}, out); !errors.Is(err, ErrWritePDF) {
		t.Errorf("MergeFiles() error = %v, want ErrWritePDF", err)
	}
}

func TestPDFMerger_NoValidInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	garbage := writePDF(t, dir, "bad.pdf", []byte("%PDF-1.7 truncated"))
	out := filepath.Join(dir, "book.pdf")

	tests := []struct {
		name  string
		paths []string
	}{
		{"nil", nil},
		{"missing", []string{filepath.Join(dir, "nope.pdf")}},
		{"directory", []string{dir}},
		{"invalid", []string{garbage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := NewPDFMerger(nil).MergeFiles(tt.paths, out+tt.name); !errors.Is(err, ErrNoPages) {
				t.Errorf("MergeFiles() error = %v, want ErrNoPages", err)
			}
		})
	}
}

func TestPDFMerger_PageCountMissing(t *testing.T) {
	t.Parallel()

	if _, err := NewPDFMerger(nil).PageCount(filepath.Join(t.TempDir(), "none.pdf")); err == nil {
		t.Error("PageCount() on a missing file should fail")
	}
}
