package cin7

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
	"github.com/erp/connectors/internal/timeutil"
)

// SalesOrdersClient exposes the sales order operations. Simple CRUD and
// queries go through the REST API; voiding and date correction exist only in
// the web console and run through the UI workflow engine.
type SalesOrdersClient struct {
	config  *Config
	api     *apiChannel
	session browserSession
	logger  *zap.Logger
}

// Get retrieves one sales order by id
func (c *SalesOrdersClient) Get(ctx context.Context, id string) (*SalesOrder, error) {
	var order SalesOrder
	if err := c.api.getJSON(ctx, "/SalesOrders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByRef retrieves the sales order with exactly the given reference.
// The where filter matches loosely on some tenants, so the result set is
// narrowed to an exact reference match.
func (c *SalesOrdersClient) GetByRef(ctx context.Context, ref string) (*SalesOrder, error) {
	orders, err := c.Search(ctx, fmt.Sprintf("Reference='%s'", ref))
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Reference == ref {
			return &orders[i], nil
		}
	}
	return nil, nil
}

// GetByRefs retrieves sales orders matching any of the given references
func (c *SalesOrdersClient) GetByRefs(ctx context.Context, refs []string) ([]SalesOrder, error) {
	clauses := make([]string, 0, len(refs))
	for _, ref := range refs {
		clauses = append(clauses, fmt.Sprintf("Reference='%s'", ref))
	}
	return c.Search(ctx, strings.Join(clauses, " OR "))
}

// GetByIds retrieves sales orders matching any of the given ids
func (c *SalesOrdersClient) GetByIds(ctx context.Context, ids []string) ([]SalesOrder, error) {
	clauses := make([]string, 0, len(ids))
	for _, id := range ids {
		clauses = append(clauses, "Id="+id)
	}
	return c.Search(ctx, strings.Join(clauses, " OR "))
}

// Search runs a vendor filter expression, passed through verbatim
func (c *SalesOrdersClient) Search(ctx context.Context, where string) ([]SalesOrder, error) {
	query := url.Values{}
	query.Set("where", where)

	var orders []SalesOrder
	if err := c.api.getJSON(ctx, "/SalesOrders", query, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Create creates one sales order and returns its id; a rejected upsert is an
// error carrying the joined vendor messages
func (c *SalesOrdersClient) Create(ctx context.Context, order *SalesOrder) (string, error) {
	c.logger.Info("creating sales order", zap.String("reference", order.Reference))
	acks, err := c.api.upsert(ctx, http.MethodPost, "/SalesOrders", []*SalesOrder{order})
	if err != nil {
		return "", err
	}
	if err := integration.FirstAckError(acks); err != nil {
		return "", err
	}
	return strconv.FormatInt(acks[0].ID, 10), nil
}

// CreateBatch creates sales orders and returns the raw acknowledgement array
// for the caller to inspect
func (c *SalesOrdersClient) CreateBatch(ctx context.Context, orders []*SalesOrder) ([]integration.UpsertAck, error) {
	return c.api.upsert(ctx, http.MethodPost, "/SalesOrders", orders)
}

// Update updates one sales order
func (c *SalesOrdersClient) Update(ctx context.Context, order *SalesOrder) (string, error) {
	c.logger.Info("updating sales order", zap.Int64("id", order.ID))
	acks, err := c.api.upsert(ctx, http.MethodPut, "/SalesOrders", []*SalesOrder{order})
	if err != nil {
		return "", err
	}
	if err := integration.FirstAckError(acks); err != nil {
		return "", err
	}
	return strconv.FormatInt(acks[0].ID, 10), nil
}

// UpdateBatch updates sales orders and returns the raw acknowledgement array
func (c *SalesOrdersClient) UpdateBatch(ctx context.Context, orders []*SalesOrder) ([]integration.UpsertAck, error) {
	return c.api.upsert(ctx, http.MethodPut, "/SalesOrders", orders)
}

// GetRecent retrieves every sales order modified within the given window,
// walking result pages until one comes back empty
func (c *SalesOrdersClient) GetRecent(ctx context.Context, window time.Duration) ([]SalesOrder, error) {
	since := time.Now().Add(-window).UTC().Format(time.RFC3339)

	var all []SalesOrder
	for pageNo := 1; ; pageNo++ {
		c.logger.Debug("fetching recent sales orders", zap.Int("page", pageNo))

		query := url.Values{}
		query.Set("where", fmt.Sprintf("modifiedDate >= '%s'", since))
		query.Set("page", strconv.Itoa(pageNo))

		var pageOrders []SalesOrder
		if err := c.api.getJSON(ctx, "/SalesOrders", query, &pageOrders); err != nil {
			return nil, err
		}
		if len(pageOrders) == 0 {
			return all, nil
		}
		all = append(all, pageOrders...)
	}
}

// ---------------------------------------------------------------------------
// UI Workflows
// ---------------------------------------------------------------------------

// Void voids sales orders through the web console; the REST API has no void
// operation. One result per order id, in input order.
func (c *SalesOrdersClient) Void(ctx context.Context, orderIDs []string) ([]integration.BatchResult, error) {
	return runBatch(ctx, c.session, c.logger, orderIDs, func(ctx context.Context, page Page, orderID string) error {
		c.logger.Info("voiding sales order", zap.String("order_id", orderID))
		return voidTransaction(ctx, page, c.config,
			transactionEntryURL(c.config.AppLinkIDs.SalesOrders, orderID),
			salesOrderSelectors.AdminButton, salesOrderSelectors.VoidButton)
	})
}

// CorrectDates rewrites the four document date/time pairs of each order
// through the web console. An order whose delivery first and last name fields
// both come back empty is reported failed without submitting: the vendor's
// save action silently corrupts such records.
func (c *SalesOrdersClient) CorrectDates(ctx context.Context, corrections []DateCorrection) ([]integration.BatchResult, error) {
	byID := make(map[string]DateCorrection, len(corrections))
	ids := make([]string, 0, len(corrections))
	for _, corr := range corrections {
		byID[corr.ID] = corr
		ids = append(ids, corr.ID)
	}

	return runBatch(ctx, c.session, c.logger, ids, func(ctx context.Context, page Page, orderID string) error {
		corr := byID[orderID]
		c.logger.Info("correcting sales order dates", zap.String("order_id", orderID))

		page.SettleNavigation(ctx, settleTimeout)
		if err := page.Navigate(ctx, transactionEntryURL(c.config.AppLinkIDs.SalesOrders, orderID)); err != nil {
			return err
		}
		if err := page.WaitReady(ctx, c.config.NavigationTimeout); err != nil {
			return err
		}

		pairs := []struct {
			dateSel, timeSel string
			value            time.Time
		}{
			{salesOrderSelectors.OrderDateField, salesOrderSelectors.OrderTimeField, corr.OrderDate},
			{salesOrderSelectors.InvoiceDateField, salesOrderSelectors.InvoiceTimeField, corr.InvoiceDate},
			{salesOrderSelectors.DispatchedDateField, salesOrderSelectors.DispatchedTimeField, corr.DispatchedDate},
			{salesOrderSelectors.CompletedDateField, salesOrderSelectors.CompletedTimeField, corr.CompletedDate},
		}
		for _, pair := range pairs {
			if pair.value.IsZero() {
				continue
			}
			if err := retypeField(ctx, page, pair.dateSel, timeutil.FormatDate(pair.value, corr.Timezone)); err != nil {
				return err
			}
			if err := retypeField(ctx, page, pair.timeSel, timeutil.FormatTime(pair.value, corr.Timezone)); err != nil {
				return err
			}
		}

		firstName, err := readInputValue(ctx, page, salesOrderSelectors.FirstNameField)
		if err != nil {
			return err
		}
		lastName, err := readInputValue(ctx, page, salesOrderSelectors.LastNameField)
		if err != nil {
			return err
		}
		if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
			return fmt.Errorf("cin7: first name and last name fields are both empty, not submitting order %s", orderID)
		}

		if err := page.ScrollIntoView(ctx, salesOrderSelectors.SaveButton); err != nil {
			return err
		}
		return page.ClickAndNavigate(ctx, salesOrderSelectors.SaveButton, c.config.NavigationTimeout)
	})
}

// ---------------------------------------------------------------------------
// Internal Comments
// ---------------------------------------------------------------------------

// InternalCommentsData decodes the structured payload riding in the order's
// internal comments field
func (c *SalesOrdersClient) InternalCommentsData(order *SalesOrder, separator string) map[string]string {
	return DecodeInternalComments(order.InternalComments, separator)
}

// InternalCommentsString encodes data for the internal comments field
func (c *SalesOrdersClient) InternalCommentsString(data map[string]string, separator string) string {
	return EncodeInternalComments(data, separator)
}

// ---------------------------------------------------------------------------
// Shared UI helpers
// ---------------------------------------------------------------------------

// voidTransaction drives the console void flow: transaction page, admin
// sub-page, void control. Every step is gated on its selector appearing
// within the configured timeout; failing a gate aborts just this item.
func voidTransaction(ctx context.Context, page Page, config *Config, url, adminSelector, voidSelector string) error {
	page.SettleNavigation(ctx, settleTimeout)

	if err := page.Navigate(ctx, url); err != nil {
		return err
	}
	if err := page.WaitVisible(ctx, adminSelector, config.SelectorTimeout); err != nil {
		return err
	}
	if err := page.ClickAndNavigate(ctx, adminSelector, config.NavigationTimeout); err != nil {
		return fmt.Errorf("cin7: failed to open admin page: %w", err)
	}
	if err := page.WaitVisible(ctx, voidSelector, config.SelectorTimeout); err != nil {
		return err
	}
	if err := page.ClickAndNavigate(ctx, voidSelector, config.NavigationTimeout); err != nil {
		return fmt.Errorf("cin7: failed to void transaction: %w", err)
	}
	return nil
}

// retypeField clears an input and types the replacement value
func retypeField(ctx context.Context, page Page, selector, value string) error {
	if err := page.Clear(ctx, selector); err != nil {
		return err
	}
	return page.SendKeys(ctx, selector, value)
}

// readInputValue reads an input's current value off the live page
func readInputValue(ctx context.Context, page Page, selector string) (string, error) {
	var value string
	if err := page.Evaluate(ctx, fmt.Sprintf(readInputValueJS, selector), &value); err != nil {
		return "", err
	}
	return value, nil
}
