package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TranscriptDraft is a transcript read from a file before it is stored.
type TranscriptDraft struct {
	Title string
	Text  string
}

// transcriptFrontMatter is the optional YAML header of a transcript file.
type transcriptFrontMatter struct {
	Title string `yaml:"title"`
}

// ParseTranscriptFile splits an optional YAML front matter block from the transcript text.
//
// Format:
//
//	---
//	title: Weekly sync
//	---
//	Alice: I finished the login page.
//	Bob: I'll start on the API docs.
//
// Without front matter the whole content is the text and Title is empty.
// Unknown front matter keys are ignored.
func ParseTranscriptFile(content string) (TranscriptDraft, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	normalized := strings.ReplaceAll(content, "\r\n", "\n")

	if !strings.HasPrefix(normalized, "---\n") {
		return TranscriptDraft{Text: strings.TrimSpace(normalized)}, nil
	}

	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return TranscriptDraft{}, fmt.Errorf("%w: front matter is not closed with ---", ErrValidation)
	}
	header := rest[:end]
	body := rest[end+len("\n---"):]
	// The closing delimiter must be a line of its own.
	if body != "" && body[0] != '\n' {
		return TranscriptDraft{}, fmt.Errorf("%w: front matter is not closed with ---", ErrValidation)
	}

	var fm transcriptFrontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return TranscriptDraft{}, fmt.Errorf("%w: invalid front matter: %v", ErrValidation, err)
	}

	return TranscriptDraft{
		Title: strings.TrimSpace(fm.Title),
		Text:  strings.TrimSpace(body),
	}, nil
}
