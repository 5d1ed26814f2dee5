// Package transcript exports a conversation snapshot to markdown or JSON.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/whiskerion/internal/chat"
)

// Format represents the format for exporting a transcript
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Meta describes the conversation being exported
type Meta struct {
	Title      string
	Persona    string
	Model      string
	ExportedAt time.Time
}

// FormatFromPath picks the export format from a file extension.
// Anything other than .json is exported as markdown.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMarkdown
}

// ExportMarkdown renders the transcript as a markdown document
func ExportMarkdown(snap chat.Snapshot, meta Meta) string {
	var sb strings.Builder

	title := meta.Title
	if title == "" {
		title = "Conversation"
	}
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	if meta.Persona != "" {
		sb.WriteString("**Persona:** ")
		sb.WriteString(meta.Persona)
		sb.WriteString("\n")
	}
	if meta.Model != "" {
		sb.WriteString("**Model:** ")
		sb.WriteString(meta.Model)
		sb.WriteString("\n")
	}
	if !meta.ExportedAt.IsZero() {
		sb.WriteString("**Exported:** ")
		sb.WriteString(meta.ExportedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(snap.Messages)))

	for i, msg := range snap.Messages {
		role := "User"
		if msg.Sender == chat.SenderBot {
			role = title
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if i < len(snap.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportDocument struct {
	Title      string         `json:"title,omitempty"`
	Persona    string         `json:"persona,omitempty"`
	Model      string         `json:"model,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	Phase      chat.Phase     `json:"phase"`
	Awaiting   bool           `json:"awaiting"`
	Messages   []chat.Message `json:"messages"`
}

// ExportJSON renders the transcript and its metadata as indented JSON
func ExportJSON(snap chat.Snapshot, meta Meta) ([]byte, error) {
	doc := exportDocument{
		Title:    meta.Title,
		Persona:  meta.Persona,
		Model:    meta.Model,
		Phase:    snap.Phase,
		Awaiting: snap.Awaiting,
		Messages: snap.Messages,
	}
	if !meta.ExportedAt.IsZero() {
		doc.ExportedAt = &meta.ExportedAt
	}
	if doc.Messages == nil {
		doc.Messages = []chat.Message{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// WriteFile exports the snapshot to path in the format implied by its extension
func WriteFile(path string, snap chat.Snapshot, meta Meta) error {
	var data []byte
	switch FormatFromPath(path) {
	case FormatJSON:
		out, err := ExportJSON(snap, meta)
		if err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
		data = append(out, '\n')
	default:
		data = []byte(ExportMarkdown(snap, meta))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// DefaultFileName returns a timestamped file name for an export
func DefaultFileName(now time.Time) string {
	return "whiskerion-" + now.Format("20060102-150405") + ".md"
}
