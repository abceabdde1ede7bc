package cin7

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// fakePage records every interaction as "verb selector-or-url" and lets tests
// script failures per selector and responses per evaluated expression.
type fakePage struct {
	actions []string

	navigateErr    map[string]error
	waitVisibleErr map[string]error
	clickNavErr    map[string]error
	evaluateFn     func(expression string, out any) error
}

func newFakePage() *fakePage {
	return &fakePage{
		navigateErr:    map[string]error{},
		waitVisibleErr: map[string]error{},
		clickNavErr:    map[string]error{},
	}
}

func (p *fakePage) record(format string, args ...any) {
	p.actions = append(p.actions, fmt.Sprintf(format, args...))
}

func (p *fakePage) did(prefix string) bool {
	for _, action := range p.actions {
		if strings.HasPrefix(action, prefix) {
			return true
		}
	}
	return false
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.record("navigate %s", url)
	return p.navigateErr[url]
}

func (p *fakePage) Location(context.Context) (string, error) {
	p.record("location")
	return "", nil
}

func (p *fakePage) SettleNavigation(_ context.Context, _ time.Duration) {
	p.record("settle")
}

func (p *fakePage) WaitReady(context.Context, time.Duration) error {
	p.record("waitReady")
	return nil
}

func (p *fakePage) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	p.record("waitVisible %s", selector)
	return p.waitVisibleErr[selector]
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.record("click %s", selector)
	return nil
}

func (p *fakePage) ClickAndNavigate(_ context.Context, selector string, _ time.Duration) error {
	p.record("clickNav %s", selector)
	return p.clickNavErr[selector]
}

func (p *fakePage) SendKeys(_ context.Context, selector, text string) error {
	p.record("sendKeys %s %s", selector, text)
	return nil
}

func (p *fakePage) Clear(_ context.Context, selector string) error {
	p.record("clear %s", selector)
	return nil
}

func (p *fakePage) ScrollIntoView(_ context.Context, selector string) error {
	p.record("scroll %s", selector)
	return nil
}

func (p *fakePage) Evaluate(_ context.Context, expression string, out any) error {
	p.record("evaluate")
	if p.evaluateFn != nil {
		return p.evaluateFn(expression, out)
	}
	return nil
}

func (p *fakePage) Pause(_ context.Context, _ time.Duration) {
	p.record("pause")
}

var _ Page = (*fakePage)(nil)

// fakeSession hands out fakePages and counts lifecycle calls. getPageErrs is
// consulted by call number (1-based); a nil or missing entry means success.
type fakeSession struct {
	pages []*fakePage

	getPageCalls int
	closeCalls   int
	dialogCalls  int
	getPageErrs  map[int]error
}

func newFakeSession(pages ...*fakePage) *fakeSession {
	return &fakeSession{pages: pages, getPageErrs: map[int]error{}}
}

func (s *fakeSession) GetPage(context.Context) (Page, error) {
	s.getPageCalls++
	if err := s.getPageErrs[s.getPageCalls]; err != nil {
		return nil, err
	}
	index := s.getPageCalls - 1
	if index >= len(s.pages) {
		index = len(s.pages) - 1
	}
	return s.pages[index], nil
}

func (s *fakeSession) EnsureDialogHandler() { s.dialogCalls++ }

func (s *fakeSession) CloseBrowser() { s.closeCalls++ }

var _ browserSession = (*fakeSession)(nil)
