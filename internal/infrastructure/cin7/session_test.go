package cin7

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/connectors/internal/domain/integration"
)

func TestSessionManagerGetPage_FailsFastWithoutUICredentials(t *testing.T) {
	config := newUITestConfig(t) // no UI credentials set
	manager := NewSessionManager(config, nil)

	page, err := manager.GetPage(context.Background())
	assert.ErrorIs(t, err, integration.ErrUICredentialsMissing)
	assert.Nil(t, page)

	// A credentials failure never launches a browser
	assert.Nil(t, manager.browserCtx)
	assert.Nil(t, manager.page)
	assert.False(t, manager.isLoggedIn)
}

func TestSessionManagerGetPage_ReusesLoggedInPage(t *testing.T) {
	config := newUITestConfig(t)
	config.UI = &UICredentials{Username: "ops", Password: "secret"}
	manager := NewSessionManager(config, nil)

	// Simulate an established session; GetPage must hand it back without
	// touching the browser
	existing := newFakePage()
	manager.page = existing
	manager.isLoggedIn = true

	page, err := manager.GetPage(context.Background())
	require.NoError(t, err)
	assert.Same(t, Page(existing), page)
	assert.Empty(t, existing.actions)
}

func TestSessionManagerCloseBrowser_ResetsAllState(t *testing.T) {
	manager := NewSessionManager(newUITestConfig(t), nil)

	// Safe on a session that never started
	manager.CloseBrowser()

	var cancelled bool
	manager.page = newFakePage()
	manager.isLoggedIn = true
	manager.dialogHandlerInstalled = true
	manager.browserCtx = context.Background()
	manager.browserCancel = func() { cancelled = true }
	manager.allocCancel = func() {}

	manager.CloseBrowser()

	assert.True(t, cancelled)
	assert.Nil(t, manager.page)
	assert.Nil(t, manager.browserCtx)
	assert.Nil(t, manager.browserCancel)
	assert.Nil(t, manager.allocCancel)
	assert.False(t, manager.isLoggedIn)
	assert.False(t, manager.dialogHandlerInstalled)
}

func TestSessionManagerEnsureDialogHandler_NoopWithoutBrowser(t *testing.T) {
	manager := NewSessionManager(newUITestConfig(t), nil)
	manager.EnsureDialogHandler()
	assert.False(t, manager.dialogHandlerInstalled)
}

// The two-factor code is derived from the shared secret and the clock; pin
// both to the RFC 6238 test vector to catch a generator regression.
func TestTwoFactorCodeGeneration(t *testing.T) {
	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	code, err := totp.GenerateCode(secret, time.Unix(59, 0))
	require.NoError(t, err)
	assert.Equal(t, "287082", code)
}
