package cin7

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
)

// PaymentsClient exposes the payment operations; payments are API-only
type PaymentsClient struct {
	api    *apiChannel
	logger *zap.Logger
}

// Get retrieves one payment by id
func (c *PaymentsClient) Get(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := c.api.getJSON(ctx, "/Payments/"+id, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByOrderID retrieves the payments recorded against one order. Lookup
// failures degrade to an empty slice: callers treat "no payments found" and
// "payments unavailable" the same way.
func (c *PaymentsClient) GetByOrderID(ctx context.Context, orderID int64) []Payment {
	query := url.Values{}
	query.Set("where", fmt.Sprintf("orderId=%d", orderID))

	var payments []Payment
	if err := c.api.getJSON(ctx, "/Payments", query, &payments); err != nil {
		c.logger.Warn("failed to fetch payments for order",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return []Payment{}
	}
	return payments
}

// Create records payments; a rejected upsert is an error carrying the joined
// vendor messages
func (c *PaymentsClient) Create(ctx context.Context, payments []*Payment) error {
	acks, err := c.api.upsert(ctx, http.MethodPost, "/Payments", payments)
	if err != nil {
		c.logger.Error("failed to create payments", zap.Error(err))
		return err
	}
	if err := integration.FirstAckError(acks); err != nil {
		c.logger.Error("payment upsert rejected", zap.Error(err))
		return err
	}
	return nil
}

// CreateBatch records payments and returns the raw acknowledgement array
func (c *PaymentsClient) CreateBatch(ctx context.Context, payments []*Payment) ([]integration.UpsertAck, error) {
	return c.api.upsert(ctx, http.MethodPost, "/Payments", payments)
}
