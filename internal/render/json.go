package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/blacktop/skyframe/internal/skyframe"
)

type jsonPost struct {
	URI         string      `json:"uri"`
	Author      string      `json:"author"`
	Handle      string      `json:"handle"`
	DisplayName string      `json:"display_name,omitempty"`
	Text        string      `json:"text"`
	IndexedAt   string      `json:"indexed_at,omitempty"`
	Images      []jsonImage `json:"images"`
}

type jsonImage struct {
	Thumb       string  `json:"thumb"`
	Fullsize    string  `json:"fullsize,omitempty"`
	Alt         string  `json:"alt,omitempty"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// JSONFormatter writes posts as an indented JSON array.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes posts as JSON to w.
func (f *JSONFormatter) Format(w io.Writer, posts []skyframe.Post) error {
	out := make([]jsonPost, 0, len(posts))
	for _, p := range posts {
		jp := jsonPost{
			URI:         p.URI,
			Author:      p.Author.Name(),
			Handle:      p.Author.Handle,
			DisplayName: p.Author.DisplayName,
			Text:        p.Text,
			Images:      make([]jsonImage, 0, len(p.Images)),
		}
		if !p.IndexedAt.IsZero() {
			jp.IndexedAt = p.IndexedAt.UTC().Format(time.RFC3339)
		}
		for _, img := range p.Images {
			jp.Images = append(jp.Images, jsonImage{
				Thumb:       img.Thumb,
				Fullsize:    img.Fullsize,
				Alt:         img.Alt,
				AspectRatio: img.AspectRatio(),
			})
		}
		out = append(out, jp)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
