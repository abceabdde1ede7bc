package cin7

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
)

// browserSession is the session contract UI workflows depend on. Workflow
// code only reads the page handle and requests teardown; it never constructs
// its own browser.
type browserSession interface {
	// GetPage returns the logged-in console page, launching the browser and
	// running the login sequence when no live session exists
	GetPage(ctx context.Context) (Page, error)
	// EnsureDialogHandler guarantees exactly one auto-accept dialog handler
	// is active on the session's page
	EnsureDialogHandler()
	// CloseBrowser tears the session down; the next GetPage relaunches
	CloseBrowser()
}

// SessionManager owns the single headless-browser session against the vendor
// web console: one browser, one page, logged in at most once. Vendor pages
// are not safe for concurrent interaction, so callers run UI work strictly
// sequentially; the mutex only protects session state transitions.
type SessionManager struct {
	config *Config
	logger *zap.Logger

	mu                     sync.Mutex
	allocCancel            context.CancelFunc
	browserCtx             context.Context
	browserCancel          context.CancelFunc
	page                   Page
	isLoggedIn             bool
	dialogHandlerInstalled bool

	// now is swappable so login tests can pin the TOTP window
	now func() time.Time
}

// NewSessionManager creates a session manager. The browser is launched lazily
// on the first GetPage call.
func NewSessionManager(config *Config, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// GetPage returns the live logged-in page. When a session is already marked
// logged in the page is returned unchanged, which is what lets a batch of UI
// operations share one authentication. Otherwise a fresh browser is launched
// and the login state machine runs: credentials check, login form, optional
// two-factor challenge, dialog handler install.
func (s *SessionManager) GetPage(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isLoggedIn && s.page != nil {
		return s.page, nil
	}

	// Distinct from a wrong-credentials failure: this is a configuration
	// error and no browser is launched for it.
	if s.config.UI == nil {
		return nil, integration.ErrUICredentialsMissing
	}

	if err := s.launchLocked(); err != nil {
		return nil, err
	}

	if err := s.loginLocked(ctx); err != nil {
		s.closeLocked()
		return nil, err
	}

	s.ensureDialogHandlerLocked()
	s.isLoggedIn = true
	return s.page, nil
}

// launchLocked starts the headless browser and opens a blank page
func (s *SessionManager) launchLocked() error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		// The restricted execution environment has no usable sandbox
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1024, 768),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			s.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	s.allocCancel = allocCancel
	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	s.page = newChromedpPage(browserCtx, s.logger)
	return nil
}

// loginLocked drives the login form and, when challenged, the two-factor form
func (s *SessionManager) loginLocked(ctx context.Context) error {
	page := s.page
	navTimeout := s.config.NavigationTimeout

	if err := page.Navigate(ctx, s.config.LoginURL); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrLoginFailed, err)
	}

	location, err := page.Location(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrLoginFailed, err)
	}
	// Anything other than the login or two-factor page means the console is
	// not where we expect it; there is no retry at this layer.
	if !strings.Contains(location, loginSelectors.LoginURLIdentifier) &&
		!strings.Contains(location, loginSelectors.TwoFAURLIdentifier) {
		return fmt.Errorf("%w: unexpected landing page %s", integration.ErrLoginFailed, location)
	}

	if err := page.SendKeys(ctx, loginSelectors.Username, s.config.UI.Username); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrLoginFailed, err)
	}
	if err := page.SendKeys(ctx, loginSelectors.Password, s.config.UI.Password); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrLoginFailed, err)
	}
	if err := page.ClickAndNavigate(ctx, loginSelectors.LoginButton, navTimeout); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrLoginFailed, err)
	}

	location, err = page.Location(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrLoginFailed, err)
	}

	if strings.Contains(location, loginSelectors.TwoFAURLIdentifier) {
		code, err := totp.GenerateCode(s.config.UI.OTPSecret, s.now())
		if err != nil {
			return fmt.Errorf("%w: %v", integration.ErrTwoFactorFailed, err)
		}
		if err := page.SendKeys(ctx, loginSelectors.TwoFACode, code); err != nil {
			return fmt.Errorf("%w: %v", integration.ErrTwoFactorFailed, err)
		}
		if err := page.ClickAndNavigate(ctx, loginSelectors.TwoFAButton, navTimeout); err != nil {
			return fmt.Errorf("%w: %v", integration.ErrTwoFactorFailed, err)
		}
	}

	s.logger.Info("console session logged in")
	return nil
}

// EnsureDialogHandler guarantees exactly one auto-accept handler for native
// browser dialogs. Vendor pages raise blocking confirm dialogs that would
// hang headless execution otherwise. Calling this repeatedly never stacks a
// second handler; the install flag resets with the browser context it was
// attached to.
func (s *SessionManager) EnsureDialogHandler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureDialogHandlerLocked()
}

func (s *SessionManager) ensureDialogHandlerLocked() {
	if s.dialogHandlerInstalled || s.browserCtx == nil {
		return
	}

	browserCtx := s.browserCtx
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if dialog, ok := ev.(*cdppage.EventJavascriptDialogOpening); ok {
			s.logger.Info("accepting browser dialog", zap.String("message", dialog.Message))
			go func() {
				if err := chromedp.Run(browserCtx, cdppage.HandleJavaScriptDialog(true)); err != nil {
					s.logger.Warn("failed to accept dialog", zap.Error(err))
				}
			}()
		}
	})
	s.dialogHandlerInstalled = true
}

// CloseBrowser tears the session down. Every session field is reset on every
// exit path, so a torn-down session behaves identically to one that never
// started and the next GetPage relaunches cleanly.
func (s *SessionManager) CloseBrowser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("closing browser")
	s.closeLocked()
}

func (s *SessionManager) closeLocked() {
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	s.allocCancel = nil
	s.browserCtx = nil
	s.browserCancel = nil
	s.page = nil
	s.isLoggedIn = false
	s.dialogHandlerInstalled = false
}

// Ensure SessionManager implements the session contract
var _ browserSession = (*SessionManager)(nil)
