package skyframe

import (
	"context"
	"time"
)

// PageSize is the number of entries requested from the remote service per call.
const PageSize = 50

// Author identifies who wrote a post.
type Author struct {
	Handle      string
	DisplayName string
}

// Name returns the display name, falling back to the handle.
func (a Author) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Handle
}

// Image is a single image attachment on a post.
type Image struct {
	Thumb    string
	Fullsize string
	Alt      string
	Width    int64
	Height   int64
}

// AspectRatio returns width/height, or 1 when either dimension is unknown.
func (i Image) AspectRatio() float64 {
	if i.Width <= 0 || i.Height <= 0 {
		return 1
	}
	return float64(i.Width) / float64(i.Height)
}

// Post is a read-only view of a remote post.
type Post struct {
	URI       string
	Author    Author
	Text      string
	Images    []Image
	IndexedAt time.Time
}

// HasImages reports whether the post carries at least one image attachment.
func (p Post) HasImages() bool { return len(p.Images) > 0 }

// Source abstracts a social network whose timeline and search can be read.
type Source interface {
	Name() string
	Login(ctx context.Context) error
	Timeline(ctx context.Context) ([]Post, error)
	Search(ctx context.Context, query string) ([]Post, error)
}
