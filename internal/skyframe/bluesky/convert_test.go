package bluesky

import (
	"testing"

	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/lex/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertPost(t *testing.T) {
	t.Run("falls back to handle and tolerates missing record", func(t *testing.T) {
		post := convertPost(&bsky.FeedDefs_PostView{
			Uri:    "at://did:plc:bob/app.bsky.feed.post/x",
			Author: &bsky.ActorDefs_ProfileViewBasic{Handle: "bob.test"},
		})
		assert.Equal(t, "bob.test", post.Author.Name())
		assert.Empty(t, post.Text)
		assert.Empty(t, post.Images)
		assert.True(t, post.IndexedAt.IsZero())
	})

	t.Run("reads text from the post record", func(t *testing.T) {
		name := "Bob"
		post := convertPost(&bsky.FeedDefs_PostView{
			Author: &bsky.ActorDefs_ProfileViewBasic{Handle: "bob.test", DisplayName: &name},
			Record: &util.LexiconTypeDecoder{Val: &bsky.FeedPost{Text: "golden hour"}},
		})
		assert.Equal(t, "Bob", post.Author.Name())
		assert.Equal(t, "golden hour", post.Text)
	})
}

func TestEmbedImages(t *testing.T) {
	t.Run("nil embed", func(t *testing.T) {
		assert.Nil(t, embedImages(nil))
	})

	t.Run("direct images keep aspect ratio", func(t *testing.T) {
		images := embedImages(&bsky.FeedDefs_PostView_Embed{
			EmbedImages_View: &bsky.EmbedImages_View{
				Images: []*bsky.EmbedImages_ViewImage{
					{Thumb: "t1", Fullsize: "f1", AspectRatio: &bsky.EmbedDefs_AspectRatio{Width: 3, Height: 4}},
					{Thumb: "t2", Fullsize: "f2"},
				},
			},
		})
		require.Len(t, images, 2)
		assert.InDelta(t, 0.75, images[0].AspectRatio(), 1e-9)
		assert.Equal(t, 1.0, images[1].AspectRatio())
	})

	t.Run("quote post media", func(t *testing.T) {
		images := embedImages(&bsky.FeedDefs_PostView_Embed{
			EmbedRecordWithMedia_View: &bsky.EmbedRecordWithMedia_View{
				Media: &bsky.EmbedRecordWithMedia_View_Media{
					EmbedImages_View: &bsky.EmbedImages_View{
						Images: []*bsky.EmbedImages_ViewImage{{Thumb: "quoted"}},
					},
				},
			},
		})
		require.Len(t, images, 1)
		assert.Equal(t, "quoted", images[0].Thumb)
	})

	t.Run("link card is not an image", func(t *testing.T) {
		images := embedImages(&bsky.FeedDefs_PostView_Embed{
			EmbedExternal_View: &bsky.EmbedExternal_View{
				External: &bsky.EmbedExternal_ViewExternal{Uri: "https://example.com", Thumb: nil},
			},
		})
		assert.Empty(t, images)
	})

	t.Run("empty image list", func(t *testing.T) {
		images := embedImages(&bsky.FeedDefs_PostView_Embed{EmbedImages_View: &bsky.EmbedImages_View{}})
		assert.Empty(t, images)
	})
}
