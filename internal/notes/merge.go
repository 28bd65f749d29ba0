package notes

import (
	"fmt"
	"strings"

	"github.com/studysphere/backend/internal/models"
)

const (
	mergeTitlePrefix   = "Merged: "
	mergeTitleSources  = 3
	mergePartSeparator = "\n\n---\n\n"
)

// MergeTitle names a merged note after its first three sources.
func MergeTitle(sources []models.Note) string {
	var titles []string
	for i, n := range sources {
		if i == mergeTitleSources {
			break
		}
		t := strings.TrimSpace(n.Title)
		if t == "" {
			t = "Untitled"
		}
		titles = append(titles, t)
	}
	return mergeTitlePrefix + strings.Join(titles, " + ")
}

// MergeContent concatenates sources in order, each under a "### Part N" header.
func MergeContent(sources []models.Note) string {
	parts := make([]string, 0, len(sources))
	for i, n := range sources {
		t := strings.TrimSpace(n.Title)
		if t == "" {
			t = "Untitled note"
		}
		parts = append(parts, fmt.Sprintf("### Part %d: %s\n\n%s", i+1, t, n.Content))
	}
	return strings.Join(parts, mergePartSeparator)
}

// SourceText joins notes into quiz-generation input.
func SourceText(sources []models.Note) string {
	parts := make([]string, 0, len(sources))
	for _, n := range sources {
		parts = append(parts, n.Title+"\n\n"+n.Content)
	}
	return strings.Join(parts, "\n\n-----\n\n")
}
