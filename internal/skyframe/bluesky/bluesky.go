package bluesky

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/blacktop/skyframe/internal/logutil"
	"github.com/blacktop/skyframe/internal/skyframe"
	"github.com/blacktop/skyframe/internal/skyframe/session"
	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/xrpc"
)

const (
	EnvIdentifier = "BLUESKY_IDENTIFIER"
	EnvPassword   = "BLUESKY_PASSWORD"

	// DefaultPDSURL is the hosted PDS that serves authenticated requests.
	DefaultPDSURL = "https://bsky.social"

	providerName   = "bluesky"
	requestTimeout = 30 * time.Second
	userAgent      = "skyframe/1"
)

// Config holds the account credentials and PDS location.
type Config struct {
	Identifier string
	Password   string
	PDSURL     string
	Timeout    time.Duration
}

// Validate reports which credentials are missing.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Identifier) == "" {
		missing = append(missing, EnvIdentifier)
	}
	if strings.TrimSpace(c.Password) == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return skyframe.MissingEnvError{Provider: providerName, Variables: missing}
	}
	return nil
}

// Client reads the home timeline and post search from a Bluesky PDS.
type Client struct {
	cfg        Config
	httpClient *http.Client
	session    *session.Session

	mu   sync.RWMutex
	auth *xrpc.AuthInfo
}

// New constructs a Bluesky client. No network call is made until the first
// Login, Timeline or Search.
func New(cfg Config) *Client {
	cfg.Identifier = strings.TrimSpace(cfg.Identifier)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.PDSURL = strings.TrimRight(strings.TrimSpace(cfg.PDSURL), "/")
	if cfg.PDSURL == "" {
		cfg.PDSURL = DefaultPDSURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = requestTimeout
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	c.session = session.New(c.createSession)
	return c
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// State exposes the session state.
func (c *Client) State() session.State { return c.session.State() }

// Login authenticates with the stored credentials and keeps the session for later calls.
func (c *Client) Login(ctx context.Context) error {
	return c.session.Login(ctx)
}

// Timeline returns the image posts among the most recent home timeline entries.
func (c *Client) Timeline(ctx context.Context) ([]skyframe.Post, error) {
	var out *bsky.FeedGetTimeline_Output
	err := c.withSession(ctx, "get timeline", func(api *xrpc.Client) error {
		var err error
		out, err = bsky.FeedGetTimeline(ctx, api, "", "", skyframe.PageSize)
		return err
	})
	if err != nil {
		return nil, err
	}

	posts := make([]skyframe.Post, 0, len(out.Feed))
	for _, item := range out.Feed {
		if item == nil || item.Post == nil {
			continue
		}
		posts = append(posts, convertPost(item.Post))
	}

	filtered := skyframe.WithImages(posts)
	logutil.Debugf("timeline: %d entries, %d with images", len(posts), len(filtered))
	return filtered, nil
}

// Search returns the image posts among the first matches for query.
func (c *Client) Search(ctx context.Context, query string) ([]skyframe.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, skyframe.ValidationError{Provider: providerName, Reason: "search query is empty"}
	}

	var out *bsky.FeedSearchPosts_Output
	err := c.withSession(ctx, "search posts", func(api *xrpc.Client) error {
		var err error
		out, err = bsky.FeedSearchPosts(ctx, api, "", "", "", "", skyframe.PageSize, "", query, "", "", nil, "", "")
		return err
	})
	if err != nil {
		return nil, err
	}

	posts := make([]skyframe.Post, 0, len(out.Posts))
	for _, pv := range out.Posts {
		if pv == nil {
			continue
		}
		posts = append(posts, convertPost(pv))
	}

	filtered := skyframe.WithImages(posts)
	logutil.Debugf("search %q: %d posts, %d with images", query, len(posts), len(filtered))
	return filtered, nil
}

// withSession runs call after making sure the session is authenticated. An
// expired or revoked token causes one fresh login and one repeat of call.
func (c *Client) withSession(ctx context.Context, op string, call func(api *xrpc.Client) error) error {
	if err := c.ensure(ctx); err != nil {
		return err
	}

	auth := c.currentAuth()
	err := call(c.newXRPC(auth))
	if err == nil {
		return nil
	}
	if !isTokenError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.invalidate(auth)
	if err := c.ensure(ctx); err != nil {
		return err
	}
	if err := call(c.newXRPC(c.currentAuth())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) ensure(ctx context.Context) error {
	if err := c.session.Ensure(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return skyframe.LoginFailed(err)
	}
	return nil
}

func (c *Client) createSession(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		logutil.Errorf("bluesky login failed: %v", err)
		return skyframe.NewAuthError(providerName, err)
	}

	out, err := atproto.ServerCreateSession(ctx, c.newXRPC(nil), &atproto.ServerCreateSession_Input{
		Identifier: c.cfg.Identifier,
		Password:   c.cfg.Password,
	})
	if err != nil {
		logutil.Errorf("bluesky login failed: %v", err)
		return &skyframe.AuthError{Provider: providerName, Message: xrpcMessage(err), Err: err}
	}

	c.mu.Lock()
	c.auth = &xrpc.AuthInfo{
		AccessJwt:  out.AccessJwt,
		RefreshJwt: out.RefreshJwt,
		Handle:     out.Handle,
		Did:        out.Did,
	}
	c.mu.Unlock()

	logutil.Infof("bluesky login successful: handle=%s", out.Handle)
	return nil
}

func (c *Client) currentAuth() *xrpc.AuthInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// invalidate drops the session only while failed is still the stored
// credential. Once another call has logged in again there is nothing to do.
func (c *Client) invalidate(failed *xrpc.AuthInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.auth != failed {
		return
	}
	logutil.Infof("bluesky session no longer valid, logging in again")
	c.session.Invalidate()
}

func (c *Client) newXRPC(auth *xrpc.AuthInfo) *xrpc.Client {
	ua := userAgent
	return &xrpc.Client{
		Client:    c.httpClient,
		Host:      c.cfg.PDSURL,
		UserAgent: &ua,
		Auth:      auth,
	}
}

func isTokenError(err error) bool {
	var xe *xrpc.XRPCError
	if !errors.As(err, &xe) || xe == nil {
		return false
	}
	return xe.ErrStr == "ExpiredToken" || xe.ErrStr == "InvalidToken"
}

func xrpcMessage(err error) string {
	var xe *xrpc.XRPCError
	if errors.As(err, &xe) && xe != nil {
		if xe.Message != "" {
			return xe.Message
		}
		if xe.ErrStr != "" {
			return xe.ErrStr
		}
	}
	return err.Error()
}
