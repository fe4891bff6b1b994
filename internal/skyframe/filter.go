package skyframe

// WithImages returns the posts that carry at least one image, in their original order.
func WithImages(posts []Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.HasImages() {
			out = append(out, p)
		}
	}
	return out
}
