package cin7

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
)

// settleTimeout bounds the pre-navigation settle wait before each item
const settleTimeout = 3 * time.Second

// runBatch executes fn once per item against the shared console page,
// producing exactly one BatchResult per input item in input order.
//
// Failure policy: each item runs in isolation. An item error is recorded as a
// failed result and the entire browser session is closed and relaunched
// before the next item - the failure is assumed to have left the page in an
// unknown state, and a fresh authenticated session is cheaper than in-page
// recovery. A relaunch that itself fails (cannot log in at all) is
// batch-fatal. The session is always closed when the batch finishes.
func runBatch(ctx context.Context, session browserSession, logger *zap.Logger, itemIDs []string,
	fn func(ctx context.Context, page Page, itemID string) error) ([]integration.BatchResult, error) {

	page, err := session.GetPage(ctx)
	if err != nil {
		return nil, err
	}
	defer session.CloseBrowser()

	results := make([]integration.BatchResult, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		session.EnsureDialogHandler()

		if err := fn(ctx, page, itemID); err != nil {
			logger.Error("batch item failed",
				zap.String("item_id", itemID),
				zap.Error(err))
			results = append(results, integration.BatchResult{
				ItemID:       itemID,
				Success:      false,
				ErrorMessage: err.Error(),
			})

			session.CloseBrowser()
			page, err = session.GetPage(ctx)
			if err != nil {
				// Cannot re-authenticate; the whole batch is over
				return nil, err
			}
			continue
		}

		results = append(results, integration.BatchResult{ItemID: itemID, Success: true})
	}

	return results, nil
}

// probeVisible reports whether selector appears within timeout. Expected-path
// branching (approve when present, plain save otherwise) goes through this
// probe rather than error handling.
func probeVisible(ctx context.Context, page Page, selector string, timeout time.Duration) bool {
	return page.WaitVisible(ctx, selector, timeout) == nil
}
