package mastodon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blacktop/skyframe/internal/logutil"
	"github.com/blacktop/skyframe/internal/skyframe"
	"github.com/blacktop/skyframe/internal/skyframe/session"
	mastodonapi "github.com/mattn/go-mastodon"
)

const (
	EnvServer       = "SKYFRAME_MASTODON_SERVER"
	EnvAccessToken  = "SKYFRAME_MASTODON_ACCESS_TOKEN"
	EnvClientID     = "SKYFRAME_MASTODON_CLIENT_ID"
	EnvClientSecret = "SKYFRAME_MASTODON_CLIENT_SECRET"
	EnvUsername     = "SKYFRAME_MASTODON_USERNAME"
	EnvPassword     = "SKYFRAME_MASTODON_PASSWORD"

	providerName   = "mastodon"
	requestTimeout = 30 * time.Second
)

// Config contains the settings needed to reach a Mastodon server. Either an
// access token or an app registration plus username and password is required.
type Config struct {
	Server       string
	AccessToken  string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Timeout      time.Duration
}

// Validate reports which settings are missing.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Server) == "" {
		missing = append(missing, EnvServer)
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		grant := []struct{ env, val string }{
			{EnvClientID, c.ClientID},
			{EnvClientSecret, c.ClientSecret},
			{EnvUsername, c.Username},
			{EnvPassword, c.Password},
		}
		var absent []string
		for _, g := range grant {
			if strings.TrimSpace(g.val) == "" {
				absent = append(absent, g.env)
			}
		}
		switch len(absent) {
		case 0:
		case len(grant):
			missing = append(missing, EnvAccessToken)
		default:
			missing = append(missing, absent...)
		}
	}
	if len(missing) > 0 {
		return skyframe.MissingEnvError{Provider: providerName, Variables: missing}
	}
	return nil
}

// Client reads the home timeline and status search from a Mastodon server.
type Client struct {
	cfg     Config
	client  *mastodonapi.Client
	session *session.Session
}

// New constructs a Mastodon client. No network call is made until the first
// Login, Timeline or Search.
func New(cfg Config) *Client {
	cfg.Server = strings.TrimRight(strings.TrimSpace(cfg.Server), "/")
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	if cfg.Timeout <= 0 {
		cfg.Timeout = requestTimeout
	}

	mastodonClient := mastodonapi.NewClient(&mastodonapi.Config{
		Server:       cfg.Server,
		AccessToken:  cfg.AccessToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	mastodonClient.Timeout = cfg.Timeout

	c := &Client{cfg: cfg, client: mastodonClient}
	c.session = session.New(c.verify)
	return c
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// State exposes the session state.
func (c *Client) State() session.State { return c.session.State() }

// Login checks the configured credentials against the server.
func (c *Client) Login(ctx context.Context) error {
	return c.session.Login(ctx)
}

// Timeline returns the image statuses among the most recent home timeline entries.
func (c *Client) Timeline(ctx context.Context) ([]skyframe.Post, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	statuses, err := c.client.GetTimelineHome(ctx, &mastodonapi.Pagination{Limit: skyframe.PageSize})
	if err != nil {
		return nil, fmt.Errorf("get timeline: %w", err)
	}

	posts := convertStatuses(statuses)
	filtered := skyframe.WithImages(posts)
	logutil.Debugf("timeline: %d statuses, %d with images", len(posts), len(filtered))
	return filtered, nil
}

// Search returns the image statuses among the first matches for query.
func (c *Client) Search(ctx context.Context, query string) ([]skyframe.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, skyframe.ValidationError{Provider: providerName, Reason: "search query is empty"}
	}
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	results, err := c.client.Search(ctx, query, false)
	if err != nil {
		return nil, fmt.Errorf("search statuses: %w", err)
	}

	statuses := results.Statuses
	if len(statuses) > skyframe.PageSize {
		statuses = statuses[:skyframe.PageSize]
	}

	posts := convertStatuses(statuses)
	filtered := skyframe.WithImages(posts)
	logutil.Debugf("search %q: %d statuses, %d with images", query, len(posts), len(filtered))
	return filtered, nil
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

func (c *Client) verify(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		logutil.Errorf("mastodon login failed: %v", err)
		return skyframe.NewAuthError(providerName, err)
	}

	if c.cfg.AccessToken == "" {
		if err := c.client.Authenticate(ctx, c.cfg.Username, c.cfg.Password); err != nil {
			logutil.Errorf("mastodon login failed: %v", err)
			return skyframe.NewAuthError(providerName, err)
		}
	}

	account, err := c.client.GetAccountCurrentUser(ctx)
	if err != nil {
		logutil.Errorf("mastodon login failed: %v", err)
		return skyframe.NewAuthError(providerName, err)
	}

	logutil.Infof("mastodon login successful: account=%s", account.Acct)
	return nil
}
