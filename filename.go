package site2pdf

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Artifact names inside a job's temp directory.
const (
	pagePattern      = "page_*.pdf"
	contentsFileName = "contents.pdf"
)

// pageFileName returns the artifact name for the page at index.
func pageFileName(index int) string {
	return fmt.Sprintf("page_%04d.pdf", index)
}

// partialFileName returns the output name of a cancel-and-save merge.
func partialFileName(jobID string) string {
	return "partial" + jobID + ".pdf"
}

// BookFileName builds the merged output name from the title: each
// whitespace-separated word gets an upper-case first letter, words are
// joined, and the job id and ".pdf" are appended. A blank title gives
// "book{jobID}.pdf". Characters that are not allowed in file names are
// dropped.
func BookFileName(title, jobID string) string {
	caser := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	for _, word := range strings.Fields(title) {
		b.WriteString(caser.String(sanitizeFileChars(word)))
	}
	if b.Len() == 0 {
		return "book" + sanitizeFileChars(jobID) + ".pdf"
	}
	return b.String() + sanitizeFileChars(jobID) + ".pdf"
}

func sanitizeFileChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return -1
		}
		return r
	}, s)
}
