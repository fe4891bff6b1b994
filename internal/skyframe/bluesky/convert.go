package bluesky

import (
	"time"

	"github.com/blacktop/skyframe/internal/skyframe"
	"github.com/bluesky-social/indigo/api/bsky"
)

func convertPost(pv *bsky.FeedDefs_PostView) skyframe.Post {
	post := skyframe.Post{
		URI:    pv.Uri,
		Images: embedImages(pv.Embed),
	}

	if pv.Author != nil {
		post.Author.Handle = pv.Author.Handle
		if pv.Author.DisplayName != nil {
			post.Author.DisplayName = *pv.Author.DisplayName
		}
	}

	if pv.Record != nil {
		if rec, ok := pv.Record.Val.(*bsky.FeedPost); ok {
			post.Text = rec.Text
		}
	}

	if ts, err := time.Parse(time.RFC3339Nano, pv.IndexedAt); err == nil {
		post.IndexedAt = ts
	}

	return post
}

// embedImages extracts images from a direct image embed or from the media
// half of a quote post.
func embedImages(embed *bsky.FeedDefs_PostView_Embed) []skyframe.Image {
	if embed == nil {
		return nil
	}

	view := embed.EmbedImages_View
	if view == nil && embed.EmbedRecordWithMedia_View != nil && embed.EmbedRecordWithMedia_View.Media != nil {
		view = embed.EmbedRecordWithMedia_View.Media.EmbedImages_View
	}
	if view == nil || len(view.Images) == 0 {
		return nil
	}

	images := make([]skyframe.Image, 0, len(view.Images))
	for _, img := range view.Images {
		if img == nil {
			continue
		}
		image := skyframe.Image{
			Thumb:    img.Thumb,
			Fullsize: img.Fullsize,
			Alt:      img.Alt,
		}
		if img.AspectRatio != nil {
			image.Width = img.AspectRatio.Width
			image.Height = img.AspectRatio.Height
		}
		images = append(images, image)
	}
	return images
}
