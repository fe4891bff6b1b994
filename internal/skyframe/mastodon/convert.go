package mastodon

import (
	"strings"

	"github.com/blacktop/skyframe/internal/skyframe"
	mastodonapi "github.com/mattn/go-mastodon"
	"golang.org/x/net/html"
)

func convertStatuses(statuses []*mastodonapi.Status) []skyframe.Post {
	posts := make([]skyframe.Post, 0, len(statuses))
	for _, status := range statuses {
		if status == nil {
			continue
		}
		posts = append(posts, convertStatus(status))
	}
	return posts
}

// convertStatus maps a status to a Post. A boost is shown as the boosted status.
func convertStatus(status *mastodonapi.Status) skyframe.Post {
	if status.Reblog != nil {
		status = status.Reblog
	}

	uri := status.URI
	if uri == "" {
		uri = status.URL
	}

	return skyframe.Post{
		URI: uri,
		Author: skyframe.Author{
			Handle:      status.Account.Acct,
			DisplayName: status.Account.DisplayName,
		},
		Text:      plainText(status.Content),
		Images:    attachmentImages(status.MediaAttachments),
		IndexedAt: status.CreatedAt,
	}
}

func attachmentImages(attachments []mastodonapi.Attachment) []skyframe.Image {
	var images []skyframe.Image
	for _, a := range attachments {
		if a.Type != "image" {
			continue
		}
		size := a.Meta.Original
		if size.Width <= 0 || size.Height <= 0 {
			size = a.Meta.Small
		}
		images = append(images, skyframe.Image{
			Thumb:    a.PreviewURL,
			Fullsize: a.URL,
			Alt:      a.Description,
			Width:    size.Width,
			Height:   size.Height,
		})
	}
	return images
}

// plainText flattens status HTML into text, keeping line and paragraph breaks.
func plainText(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				b.WriteByte('\n')
			case "p":
				if tt == html.EndTagToken {
					b.WriteString("\n\n")
				}
			}
		}
	}
}
