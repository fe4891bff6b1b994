package mastodon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/blacktop/skyframe/internal/skyframe"
	"github.com/blacktop/skyframe/internal/skyframe/session"
	mastodonapi "github.com/mattn/go-mastodon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

type fakeServer struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	paths     []string
	statuses  string
	lastQuery string
	lastLimit string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{t: t, statuses: mixedStatuses}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.paths = append(f.paths, r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/oauth/token" {
		if err := r.ParseForm(); err != nil {
			f.t.Errorf("parse token form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "password" || r.PostForm.Get("password") != "hunter2" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","scope":"read","created_at":1700000000}`, goodToken)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+goodToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"The access token is invalid"}`))
		return
	}

	switch r.URL.Path {
	case "/api/v1/accounts/verify_credentials":
		_, _ = w.Write([]byte(`{"id":"9","username":"alice","acct":"alice","display_name":"Alice"}`))
	case "/api/v1/timelines/home":
		f.lastLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(f.statuses))
	case "/api/v1/search", "/api/v2/search":
		f.lastQuery = r.URL.Query().Get("q")
		fmt.Fprintf(w, `{"statuses":%s}`, f.statuses)
	default:
		f.t.Errorf("unexpected path %q", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) snapshot() (paths []string, query, limit string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...), f.lastQuery, f.lastLimit
}

func statusJSON(id int, mediaType string) string {
	media := "[]"
	if mediaType != "" {
		media = fmt.Sprintf(`[{"id":"m%d","type":%q,"url":"https://m.test/full/%d.jpg","preview_url":"https://m.test/thumb/%d.jpg","description":"desc %d","meta":{"original":{"width":1200,"height":800},"small":{"width":400,"height":267}}}]`, id, mediaType, id, id, id)
	}
	return fmt.Sprintf(`{"id":"%d","uri":"https://m.test/users/alice/statuses/%d","url":"https://m.test/@alice/%d","account":{"id":"9","username":"alice","acct":"alice@m.test","display_name":"Alice"},"content":"<p>status %d &amp; more</p>","created_at":"2025-06-01T12:00:00.000Z","media_attachments":%s}`, id, id, id, id, media)
}

var mixedStatuses = "[" + strings.Join([]string{
	statusJSON(1, "image"),
	statusJSON(2, "video"),
	statusJSON(3, "image"),
	statusJSON(4, ""),
}, ",") + "]"

func tokenClient(f *fakeServer) *Client {
	return New(Config{Server: f.server.URL, AccessToken: goodToken})
}

func TestTimeline(t *testing.T) {
	t.Run("keeps only image statuses in order", func(t *testing.T) {
		f := newFakeServer(t)
		c := tokenClient(f)

		posts, err := c.Timeline(context.Background())
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "https://m.test/users/alice/statuses/1", posts[0].URI)
		assert.Equal(t, "https://m.test/users/alice/statuses/3", posts[1].URI)

		first := posts[0]
		assert.Equal(t, "Alice", first.Author.Name())
		assert.Equal(t, "status 1 & more", first.Text)
		require.Len(t, first.Images, 1)
		assert.Equal(t, "https://m.test/thumb/1.jpg", first.Images[0].Thumb)
		assert.InDelta(t, 1.5, first.Images[0].AspectRatio(), 1e-9)

		paths, _, limit := f.snapshot()
		assert.Equal(t, "50", limit)
		assert.Equal(t, []string{"/api/v1/accounts/verify_credentials", "/api/v1/timelines/home"}, paths)
	})

	t.Run("verifies credentials only once", func(t *testing.T) {
		f := newFakeServer(t)
		c := tokenClient(f)

		_, err := c.Timeline(context.Background())
		require.NoError(t, err)
		_, err = c.Timeline(context.Background())
		require.NoError(t, err)

		paths, _, _ := f.snapshot()
		assert.Equal(t, []string{
			"/api/v1/accounts/verify_credentials",
			"/api/v1/timelines/home",
			"/api/v1/timelines/home",
		}, paths)
		assert.Equal(t, session.Authenticated, c.State())
	})

	t.Run("rejected token skips the data request", func(t *testing.T) {
		f := newFakeServer(t)
		c := New(Config{Server: f.server.URL, AccessToken: "stale"})

		_, err := c.Timeline(context.Background())
		require.ErrorIs(t, err, skyframe.ErrLoginFailed)

		var authErr *skyframe.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "mastodon", authErr.Provider)

		paths, _, _ := f.snapshot()
		assert.Equal(t, []string{"/api/v1/accounts/verify_credentials"}, paths)
	})

	t.Run("password grant obtains a token first", func(t *testing.T) {
		f := newFakeServer(t)
		c := New(Config{Server: f.server.URL, ClientID: "id", ClientSecret: "secret", Username: "alice@m.test", Password: "hunter2"})

		posts, err := c.Timeline(context.Background())
		require.NoError(t, err)
		assert.Len(t, posts, 2)

		paths, _, _ := f.snapshot()
		assert.Equal(t, []string{"/oauth/token", "/api/v1/accounts/verify_credentials", "/api/v1/timelines/home"}, paths)
	})

	t.Run("bad password", func(t *testing.T) {
		f := newFakeServer(t)
		c := New(Config{Server: f.server.URL, ClientID: "id", ClientSecret: "secret", Username: "alice", Password: "nope"})

		_, err := c.Timeline(context.Background())
		require.ErrorIs(t, err, skyframe.ErrLoginFailed)

		paths, _, _ := f.snapshot()
		assert.Equal(t, []string{"/oauth/token"}, paths)
	})
}

func TestSearch(t *testing.T) {
	t.Run("filters matches", func(t *testing.T) {
		f := newFakeServer(t)
		c := tokenClient(f)

		posts, err := c.Search(context.Background(), " #photography ")
		require.NoError(t, err)
		assert.Len(t, posts, 2)

		_, query, _ := f.snapshot()
		assert.Equal(t, "#photography", query)
	})

	t.Run("caps results at the page size", func(t *testing.T) {
		f := newFakeServer(t)
		many := make([]string, 0, 60)
		for i := range 60 {
			many = append(many, statusJSON(i, "image"))
		}
		f.statuses = "[" + strings.Join(many, ",") + "]"
		c := tokenClient(f)

		posts, err := c.Search(context.Background(), "cats")
		require.NoError(t, err)
		assert.Len(t, posts, skyframe.PageSize)
	})

	t.Run("blank query issues no request", func(t *testing.T) {
		f := newFakeServer(t)
		c := tokenClient(f)

		_, err := c.Search(context.Background(), "  ")
		var verr skyframe.ValidationError
		require.ErrorAs(t, err, &verr)

		paths, _, _ := f.snapshot()
		assert.Empty(t, paths)
	})
}

func TestConvertStatus(t *testing.T) {
	t.Run("boost shows the boosted status", func(t *testing.T) {
		post := convertStatus(&mastodonapi.Status{
			URI:     "https://m.test/boost",
			Account: mastodonapi.Account{Acct: "bob"},
			Reblog: &mastodonapi.Status{
				URI:     "https://m.test/original",
				Account: mastodonapi.Account{Acct: "carol", DisplayName: "Carol"},
				Content: "<p>hello</p>",
			},
		})
		assert.Equal(t, "https://m.test/original", post.URI)
		assert.Equal(t, "Carol", post.Author.Name())
		assert.Equal(t, "hello", post.Text)
	})

	t.Run("falls back to small size and to url", func(t *testing.T) {
		post := convertStatus(&mastodonapi.Status{
			URL: "https://m.test/@a/1",
			MediaAttachments: []mastodonapi.Attachment{{
				Type: "image",
				Meta: mastodonapi.AttachmentMeta{Small: mastodonapi.AttachmentSize{Width: 300, Height: 600}},
			}},
		})
		assert.Equal(t, "https://m.test/@a/1", post.URI)
		require.Len(t, post.Images, 1)
		assert.InDelta(t, 0.5, post.Images[0].AspectRatio(), 1e-9)
	})
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>one</p><p>two</p>", "one\n\ntwo"},
		{"line<br>break", "line\nbreak"},
		{`<p>tag <a href="https://m.test/tags/go">#<span>go</span></a></p>`, "tag #go"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, plainText(tt.in), tt.in)
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Config{Server: "https://m.test", AccessToken: "t"}.Validate())
	require.NoError(t, Config{Server: "https://m.test", ClientID: "a", ClientSecret: "b", Username: "c", Password: "d"}.Validate())

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"nothing", Config{}, []string{EnvServer, EnvAccessToken}},
		{"no auth", Config{Server: "https://m.test"}, []string{EnvAccessToken}},
		{"partial grant", Config{Server: "https://m.test", ClientID: "a", Username: "c"}, []string{EnvClientSecret, EnvPassword}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var missing skyframe.MissingEnvError
			require.ErrorAs(t, tt.cfg.Validate(), &missing)
			assert.Equal(t, tt.want, missing.Variables)
		})
	}
}
