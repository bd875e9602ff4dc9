// Package authflow builds provider authorization redirects and parses the
// returned token fragments. Pending flows live in an explicit in-memory
// store keyed by (provider, agenda) with a fixed lifetime, replacing the
// ambient session storage the browser original leaned on.
package authflow

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/guilherme-santos/agendahub"
)

const (
	stateLength   = 20
	stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// pendingLifetime bounds how long an authorization redirect may stay
	// unanswered before its record is discarded.
	pendingLifetime = 10 * time.Minute
)

// ProviderConfig is the registration one cloud provider needs.
type ProviderConfig struct {
	ClientID string
	Scopes   []string
}

type pending struct {
	provider  agendahub.Source
	agendaID  string
	state     string
	createdAt time.Time
}

// Callback is a successfully parsed token fragment. ExpiresIn is zero
// when the provider omitted expires_in; the caller then leaves the expiry
// unset and treats the token as non-expiring until a fetch fails.
type Callback struct {
	AccessToken string
	ExpiresIn   int
	Provider    agendahub.Source
	AgendaID    string
}

// CallbackError is a provider redirect that carried an error instead of a
// token, resolved to the agenda whose flow was pending.
type CallbackError struct {
	Provider agendahub.Source
	AgendaID string
	Err      *agendahub.AuthFlowError
}

// StateMismatchError is a callback whose echoed state does not match the
// pending flow's. It unwraps to agendahub.ErrStateMismatch and names the
// agenda whose flow was rejected so the caller can mark it.
type StateMismatchError struct {
	Provider agendahub.Source
	AgendaID string
}

func (e *StateMismatchError) Error() string {
	return agendahub.ErrStateMismatch.Error()
}

func (e *StateMismatchError) Unwrap() error {
	return agendahub.ErrStateMismatch
}

// Controller owns the pending-authorization records and is safe for
// concurrent use. It never mutates agenda state; it only returns results
// for the orchestrator to apply.
type Controller struct {
	google      ProviderConfig
	microsoft   ProviderConfig
	redirectURI string
	now         func() time.Time

	mu      sync.Mutex
	pending map[string]*pending
	// lastKey points at the most recent redirect, the flow a bare
	// callback fragment belongs to.
	lastKey string
}

func NewController(google, microsoft ProviderConfig, redirectURI string) *Controller {
	return &Controller{
		google:      google,
		microsoft:   microsoft,
		redirectURI: redirectURI,
		now:         time.Now,
		pending:     make(map[string]*pending),
	}
}

func pendingKey(provider agendahub.Source, agendaID string) string {
	return string(provider) + "/" + agendaID
}

// AuthorizationURL generates a fresh anti-forgery state, records the
// pending flow and returns the provider's implicit-grant authorization
// URL. The caller is responsible for navigating to it.
func (c *Controller) AuthorizationURL(provider agendahub.Source, agendaID string) (string, error) {
	cfg, prompt, err := c.oauthConfig(provider)
	if err != nil {
		return "", err
	}

	state, err := newState()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.prune()
	key := pendingKey(provider, agendaID)
	c.pending[key] = &pending{
		provider:  provider,
		agendaID:  agendaID,
		state:     state,
		createdAt: c.now(),
	}
	c.lastKey = key
	c.mu.Unlock()

	opts := []oauth2.AuthCodeOption{
		// Implicit grant: the token comes back in the redirect fragment,
		// no code exchange.
		oauth2.SetAuthURLParam("response_type", "token"),
		oauth2.SetAuthURLParam("prompt", prompt),
	}
	return cfg.AuthCodeURL(state, opts...), nil
}

func (c *Controller) oauthConfig(provider agendahub.Source) (*oauth2.Config, string, error) {
	switch provider {
	case agendahub.SourceGoogle:
		return &oauth2.Config{
			ClientID:    c.google.ClientID,
			Endpoint:    googleoauth.Endpoint,
			RedirectURL: c.redirectURI,
			Scopes:      c.google.Scopes,
		}, "consent", nil
	case agendahub.SourceMicrosoft:
		return &oauth2.Config{
			ClientID:    c.microsoft.ClientID,
			Endpoint:    microsoft.AzureADEndpoint("common"),
			RedirectURL: c.redirectURI,
			Scopes:      c.microsoft.Scopes,
		}, "select_account", nil
	default:
		return nil, "", agendahub.ErrNotOAuthSource
	}
}

// ParseCallback inspects a returned URL fragment. Absent token or absent
// pending flow means a normal page visit: agendahub.ErrNoCallback, not a
// hard failure. A state that does not echo the pending one is a CSRF
// mismatch; the pending record is cleared and a StateMismatchError naming
// its agenda returned. On success the pending record is cleared and the
// token data returned.
func (c *Controller) ParseCallback(fragment url.Values) (*Callback, error) {
	accessToken := fragment.Get("access_token")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()

	p := c.pending[c.lastKey]
	if accessToken == "" || p == nil {
		return nil, agendahub.ErrNoCallback
	}

	if fragment.Get("state") != p.state {
		c.clear(c.lastKey)
		return nil, &StateMismatchError{Provider: p.provider, AgendaID: p.agendaID}
	}
	c.clear(c.lastKey)

	expiresIn := 0
	if v := fragment.Get("expires_in"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing expires_in %q: %w", v, err)
		}
		expiresIn = n
	}

	return &Callback{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		Provider:    p.provider,
		AgendaID:    p.agendaID,
	}, nil
}

// ParseCallbackError inspects a fragment for a provider error redirect.
// The pending record resolves which agenda the failure belongs to; it is
// cleared either way. Returns false when the fragment carries no error.
func (c *Controller) ParseCallbackError(fragment url.Values) (*CallbackError, bool) {
	code := fragment.Get("error")
	if code == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()

	p := c.pending[c.lastKey]
	if p == nil {
		return nil, false
	}
	c.clear(c.lastKey)

	return &CallbackError{
		Provider: p.provider,
		AgendaID: p.agendaID,
		Err: &agendahub.AuthFlowError{
			Code:        code,
			Description: fragment.Get("error_description"),
		},
	}, true
}

// clear removes one pending record; callers hold the lock.
func (c *Controller) clear(key string) {
	delete(c.pending, key)
	if c.lastKey == key {
		c.lastKey = ""
	}
}

// prune drops pending records past their lifetime; callers hold the lock.
func (c *Controller) prune() {
	cutoff := c.now().Add(-pendingLifetime)
	for key, p := range c.pending {
		if p.createdAt.Before(cutoff) {
			c.clear(key)
		}
	}
}

func newState() (string, error) {
	buf := make([]byte, stateLength)
	max := big.NewInt(int64(len(stateAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating state: %w", err)
		}
		buf[i] = stateAlphabet[n.Int64()]
	}
	return string(buf), nil
}
