package session

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/socialpost/lilogin/linkedin"
)

// Manager owns the signed in user for one page load and drives the login
// redirect flow.  Its methods are safe to call from multiple goroutines, but
// the flow itself is expected to run once: Start, then at most one of
// InitiateLogin or SignOut per user action.
type Manager struct {
	config    *linkedin.Config
	storage   Storage
	exchanger TokenExchanger
	browser   Browser
	logger    hclog.Logger

	mu       sync.Mutex
	started  bool
	state    State
	loading  bool
	identity *linkedin.Identity
}

// NewManager creates a Manager in the Idle state.  Call Start once the host
// has loaded the page.
// Supported options:
//	WithLogger
func NewManager(c *linkedin.Config, s Storage, ex TokenExchanger, b Browser, opt ...Option) (*Manager, error) {
	const op = "session.NewManager"
	switch {
	case c == nil:
		return nil, fmt.Errorf("%s: config is nil: %w", op, linkedin.ErrNilParameter)
	case s == nil:
		return nil, fmt.Errorf("%s: storage is nil: %w", op, linkedin.ErrNilParameter)
	case ex == nil:
		return nil, fmt.Errorf("%s: token exchanger is nil: %w", op, linkedin.ErrNilParameter)
	case b == nil:
		return nil, fmt.Errorf("%s: browser is nil: %w", op, linkedin.ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: config is invalid: %w", op, err)
	}
	opts := getOpts(opt...)
	return &Manager{
		config:    c,
		storage:   s,
		exchanger: ex,
		browser:   b,
		logger:    opts.withLogger,
		state:     Idle,
		loading:   true,
	}, nil
}

// Start runs the page load: a persisted identity signs the user in, a
// location on the callback path is validated with HandleCallback, and
// anything else leaves the user signed out.  The error is the callback's
// failure, if any; the Manager is in a terminal state either way.  Start runs
// once per Manager, whether or not InitiateLogin was called first.
func (m *Manager) Start(ctx context.Context) error {
	const op = "Manager.Start"
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrAlreadyStarted)
	}
	m.started = true
	m.mu.Unlock()

	// storage may be remote, so it's read without holding m.mu
	if identity := m.loadSession(ctx); identity != nil {
		m.mu.Lock()
		m.identity = identity
		m.setState(Authenticated)
		m.mu.Unlock()
		return nil
	}
	if currentPath(m.browser.Location()) != m.config.CallbackPath() {
		m.mu.Lock()
		m.setState(Unauthenticated)
		m.mu.Unlock()
		return nil
	}
	return m.HandleCallback(ctx)
}

// loadSession returns the persisted identity, or nil when there is none or it
// cannot be read.
func (m *Manager) loadSession(ctx context.Context) *linkedin.Identity {
	raw, ok, err := m.storage.Get(ctx, SessionKey)
	switch {
	case err != nil:
		m.logger.Error("unable to read persisted session", "error", err)
		return nil
	case !ok:
		return nil
	}
	identity, err := linkedin.UnmarshalIdentity(raw)
	if err != nil {
		m.logger.Warn("ignoring malformed persisted session", "error", err)
		return nil
	}
	return identity
}

// InitiateLogin records a new pending login nonce and navigates the browser
// to LinkedIn's authorization endpoint.  Any earlier pending nonce is
// replaced.
func (m *Manager) InitiateLogin(ctx context.Context) error {
	const op = "Manager.InitiateLogin"
	nonce, err := linkedin.NewNonce()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	authURL, err := linkedin.AuthURL(m.config, nonce)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.storage.Set(ctx, PendingLoginKey, nonce); err != nil {
		return fmt.Errorf("%s: unable to persist pending login: %w", op, err)
	}

	m.mu.Lock()
	m.setState(AwaitingProviderRedirect)
	m.mu.Unlock()

	if err := m.browser.Assign(ctx, authURL); err != nil {
		m.mu.Lock()
		m.setState(Unauthenticated)
		m.mu.Unlock()
		return fmt.Errorf("%s: unable to navigate to provider: %w", op, err)
	}
	return nil
}

// HandleCallback validates the provider's redirect back to the callback path
// and, when it's genuine, exchanges the code for the user's identity.  Start
// invokes it; it's exported for hosts that route the callback themselves.
//
// A missing code or state is treated as an abandoned flow and returns nil.
// Every other failure returns an error and leaves the user signed out.
// Nothing is retried.
func (m *Manager) HandleCallback(ctx context.Context) error {
	const op = "Manager.HandleCallback"
	m.mu.Lock()
	m.setState(ValidatingCallback)
	m.mu.Unlock()

	q := currentQuery(m.browser.Location())
	reqError, reqCode, reqState := q.Get("error"), q.Get("code"), q.Get("state")

	if reqError != "" {
		m.browser.Alert("LinkedIn login failed: " + reqError)
		m.fail()
		return fmt.Errorf("%s: %s: %w", op, reqError, linkedin.ErrProviderError)
	}
	if reqCode == "" || reqState == "" {
		m.fail()
		return nil
	}

	pending, _, err := m.storage.Get(ctx, PendingLoginKey)
	if err != nil {
		m.logger.Error("unable to read pending login", "error", err)
		m.fail()
		return fmt.Errorf("%s: unable to read pending login: %w", op, err)
	}
	if pending == "" || reqState != pending {
		// never echo either value: the diagnostic must not help a forger
		m.logger.Warn("invalid oauth state on callback, possible forged request", "path", m.config.CallbackPath())
		m.fail()
		return fmt.Errorf("%s: %w", op, linkedin.ErrStateMismatch)
	}

	identity, err := m.exchange(ctx, reqCode)
	if err != nil {
		m.logger.Error("linkedin login error", "error", err)
		m.fail()
		return fmt.Errorf("%s: %w", op, err)
	}

	serialized, err := identity.Marshal()
	if err != nil {
		m.logger.Error("unable to serialize session", "error", err)
		m.fail()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.storage.Set(ctx, SessionKey, serialized); err != nil {
		m.logger.Error("unable to persist session", "error", err)
		m.fail()
		return fmt.Errorf("%s: unable to persist session: %w", op, err)
	}
	if err := m.storage.Remove(ctx, PendingLoginKey); err != nil {
		m.logger.Warn("unable to remove pending login", "error", err)
	}

	m.mu.Lock()
	m.identity = identity
	m.setState(Authenticated)
	m.mu.Unlock()

	if err := m.browser.ReplaceLocation(m.config.PostLoginPath); err != nil {
		m.logger.Warn("unable to replace location after login", "path", m.config.PostLoginPath, "error", err)
	}
	return nil
}

// exchange trades the code for an id_token at the backend and decodes it.
// Decode failures are reported as exchange failures.
func (m *Manager) exchange(ctx context.Context, code string) (*linkedin.Identity, error) {
	t, err := m.exchanger.Exchange(ctx, code, m.config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", linkedin.ErrExchangeFailed, err)
	}
	identity, err := linkedin.NewIdentity(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", linkedin.ErrExchangeFailed, err)
	}
	return identity, nil
}

// SignOut forgets the user, in memory and in storage.  Signing out when
// already signed out is a no-op.
func (m *Manager) SignOut(ctx context.Context) error {
	const op = "Manager.SignOut"
	m.mu.Lock()
	m.identity = nil
	m.setState(Unauthenticated)
	m.mu.Unlock()
	if err := m.storage.Remove(ctx, SessionKey); err != nil {
		return fmt.Errorf("%s: unable to remove session: %w", op, err)
	}
	return nil
}

// CurrentUser returns a copy of the signed in user.  ok is false when nobody
// is signed in.
func (m *Manager) CurrentUser() (identity linkedin.Identity, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return linkedin.Identity{}, false
	}
	return *m.identity, true
}

// IsLoading is true until the page load reaches a terminal state.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// State returns the Manager's current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) fail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = nil
	m.setState(Unauthenticated)
}

// setState transitions the Manager.  Caller must hold m.mu.
func (m *Manager) setState(s State) {
	if m.state != s {
		m.logger.Debug("session state transition", "from", m.state, "to", s)
	}
	m.state = s
	if s.IsTerminal() {
		m.loading = false
	}
}

func currentPath(u *url.URL) string {
	if u == nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func currentQuery(u *url.URL) url.Values {
	if u == nil {
		return url.Values{}
	}
	return u.Query()
}
