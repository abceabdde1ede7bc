package cin7

import (
	"context"
	"fmt"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Page is the logged-in console page that UI workflows drive. Only the
// session manager mutates session state; workflows go through this handle
// for DOM interaction and must not reach into the browser directly.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)

	// SettleNavigation waits briefly for a pending navigation left over from
	// the previous step. A timeout is non-fatal: the vendor's pages often
	// keep a dangling navigation alive, so it is logged and execution
	// continues after a short pause.
	SettleNavigation(ctx context.Context, timeout time.Duration)
	// WaitReady blocks until the document body is ready (DOM-ready, not
	// network idle; the vendor pages long-poll and never go network idle)
	WaitReady(ctx context.Context, timeout time.Duration) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	Click(ctx context.Context, selector string) error
	// ClickAndNavigate clicks and requires a navigation to follow within the
	// timeout; not navigating is an error, mirroring form submits that must
	// move the page
	ClickAndNavigate(ctx context.Context, selector string, timeout time.Duration) error
	SendKeys(ctx context.Context, selector, text string) error
	Clear(ctx context.Context, selector string) error
	ScrollIntoView(ctx context.Context, selector string) error
	Evaluate(ctx context.Context, expression string, out any) error
	Pause(ctx context.Context, d time.Duration)
}

// chromedpPage implements Page over a chromedp browser context
type chromedpPage struct {
	ctx    context.Context
	logger *zap.Logger
}

func newChromedpPage(browserCtx context.Context, logger *zap.Logger) *chromedpPage {
	return &chromedpPage{ctx: browserCtx, logger: logger}
}

// run executes actions against the browser context, bounded by timeout and
// cancelled early if the caller's context ends first
func (p *chromedpPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tctx := p.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		tctx, cancel = context.WithTimeout(tctx, timeout)
	} else {
		tctx, cancel = context.WithCancel(tctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(tctx, actions...)
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, 0, chromedp.Navigate(url))
}

func (p *chromedpPage) Location(ctx context.Context) (string, error) {
	var location string
	if err := p.run(ctx, 0, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

func (p *chromedpPage) SettleNavigation(ctx context.Context, timeout time.Duration) {
	if err := p.WaitReady(ctx, timeout); err != nil {
		p.logger.Warn("navigation settle timeout, continuing", zap.Error(err))
		p.Pause(ctx, time.Second)
	}
}

func (p *chromedpPage) WaitReady(ctx context.Context, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (p *chromedpPage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *chromedpPage) Click(ctx context.Context, selector string) error {
	return p.run(ctx, 0, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *chromedpPage) ClickAndNavigate(ctx context.Context, selector string, timeout time.Duration) error {
	navigated := make(chan struct{}, 1)
	listenCtx, stopListening := context.WithCancel(p.ctx)
	defer stopListening()
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		if _, ok := ev.(*cdppage.EventFrameNavigated); ok {
			select {
			case navigated <- struct{}{}:
			default:
			}
		}
	})

	if err := p.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return err
	}

	select {
	case <-navigated:
	case <-time.After(timeout):
		return fmt.Errorf("cin7: no navigation after clicking %s", selector)
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}

	return p.WaitReady(ctx, timeout)
}

func (p *chromedpPage) SendKeys(ctx context.Context, selector, text string) error {
	return p.run(ctx, 0, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

func (p *chromedpPage) Clear(ctx context.Context, selector string) error {
	return p.run(ctx, 0, chromedp.SetValue(selector, "", chromedp.ByQuery))
}

func (p *chromedpPage) ScrollIntoView(ctx context.Context, selector string) error {
	return p.run(ctx, 0, chromedp.ScrollIntoView(selector, chromedp.ByQuery))
}

func (p *chromedpPage) Evaluate(ctx context.Context, expression string, out any) error {
	return p.run(ctx, 0, chromedp.Evaluate(expression, out))
}

func (p *chromedpPage) Pause(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// Ensure chromedpPage implements Page
var _ Page = (*chromedpPage)(nil)
