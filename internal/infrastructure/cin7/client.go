// Package cin7 integrates with the Cin7 inventory and order-management
// platform. The platform exposes a partial, rate-limited REST API and leaves
// several operations (stock-receipt intake, document voiding, date
// correction) reachable only through its authenticated web console; this
// package reconciles the two channels behind one client.
package cin7

import (
	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
)

// Client is the integration orchestrator. Object-specific sub-clients route
// simple CRUD and queries to the authenticated API channel and console-only
// operations to the UI workflow engine sharing one browser session.
//
// A Client holds at most one browser session, and UI batches run strictly
// sequentially against it. The HTTP channel is safe for concurrent use.
type Client struct {
	config  *Config
	logger  *zap.Logger
	api     *apiChannel
	session *SessionManager

	SalesOrders    *SalesOrdersClient
	CreditNotes    *CreditNotesClient
	Payments       *PaymentsClient
	ProductOptions *ProductOptionsClient
	StockLevels    *StockLevelsClient
}

// New creates a Cin7 client. counter may be nil when key rotation is
// disabled; logger may be nil for silent operation.
func New(config *Config, counter integration.KeyRotationCounter, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := newAPIChannel(config, counter, logger.Named("cin7.api"))
	if err != nil {
		return nil, err
	}
	session := NewSessionManager(config, logger.Named("cin7.session"))

	client := &Client{
		config:  config,
		logger:  logger,
		api:     api,
		session: session,
	}
	client.SalesOrders = &SalesOrdersClient{
		config:  config,
		api:     api,
		session: session,
		logger:  logger.Named("cin7.sales_orders"),
	}
	client.CreditNotes = &CreditNotesClient{
		config:  config,
		api:     api,
		session: session,
		logger:  logger.Named("cin7.credit_notes"),
	}
	client.Payments = &PaymentsClient{
		api:    api,
		logger: logger.Named("cin7.payments"),
	}
	client.ProductOptions = &ProductOptionsClient{api: api}
	client.StockLevels = &StockLevelsClient{api: api}

	return client, nil
}

// Close tears down the browser session if one is live. The HTTP channel
// holds no resources that outlive requests.
func (c *Client) Close() {
	c.session.CloseBrowser()
}
