package unleashed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
)

// Pagination is the paging envelope on list responses
type Pagination struct {
	NumberOfItems int `json:"NumberOfItems"`
	PageSize      int `json:"PageSize"`
	PageNumber    int `json:"PageNumber"`
	NumberOfPages int `json:"NumberOfPages"`
}

// SalesOrderQueryResult is one page of sales orders
type SalesOrderQueryResult struct {
	Pagination Pagination   `json:"Pagination"`
	Items      []SalesOrder `json:"Items"`
}

// SalesOrder is an Unleashed sales order. The vendor PascalCases every field.
type SalesOrder struct {
	GUID              string     `json:"Guid"`
	OrderNumber       string     `json:"OrderNumber"`
	OrderStatus       string     `json:"OrderStatus"`
	CustomOrderStatus string     `json:"CustomOrderStatus"`
	CustomerRef       string     `json:"CustomerRef"`
	Comments          string     `json:"Comments"`
	SourceID          string     `json:"SourceId"`
	SalesOrderGroup   string     `json:"SalesOrderGroup"`
	OrderDate         DotNetTime `json:"OrderDate"`
	RequiredDate      DotNetTime `json:"RequiredDate"`
	CompletedDate     DotNetTime `json:"CompletedDate"`
	CreatedOn         DotNetTime `json:"CreatedOn"`
	LastModifiedOn    DotNetTime `json:"LastModifiedOn"`

	Customer  Customer  `json:"Customer"`
	Warehouse Warehouse `json:"Warehouse"`

	DeliveryName           string `json:"DeliveryName"`
	DeliveryStreetAddress  string `json:"DeliveryStreetAddress"`
	DeliveryStreetAddress2 string `json:"DeliveryStreetAddress2"`
	DeliverySuburb         string `json:"DeliverySuburb"`
	DeliveryCity           string `json:"DeliveryCity"`
	DeliveryRegion         string `json:"DeliveryRegion"`
	DeliveryPostCode       string `json:"DeliveryPostCode"`
	DeliveryCountry        string `json:"DeliveryCountry"`
	DeliveryInstruction    string `json:"DeliveryInstruction"`
	DeliveryMethod         string `json:"DeliveryMethod"`

	DiscountRate decimal.Decimal `json:"DiscountRate"`
	SubTotal     decimal.Decimal `json:"SubTotal"`
	TaxTotal     decimal.Decimal `json:"TaxTotal"`
	Total        decimal.Decimal `json:"Total"`

	SalesOrderLines []SalesOrderLine `json:"SalesOrderLines"`
}

// Customer is the embedded customer record on a sales order
type Customer struct {
	GUID         string `json:"Guid"`
	CustomerCode string `json:"CustomerCode"`
	CustomerName string `json:"CustomerName"`
}

// Warehouse is the embedded warehouse record on a sales order
type Warehouse struct {
	GUID          string `json:"Guid"`
	WarehouseCode string `json:"WarehouseCode"`
	WarehouseName string `json:"WarehouseName"`
}

// SalesOrderLine is one order line
type SalesOrderLine struct {
	GUID          string          `json:"Guid"`
	LineNumber    int             `json:"LineNumber"`
	LineType      string          `json:"LineType"`
	Comments      string          `json:"Comments"`
	OrderQuantity decimal.Decimal `json:"OrderQuantity"`
	UnitPrice     decimal.Decimal `json:"UnitPrice"`
	DiscountRate  decimal.Decimal `json:"DiscountRate"`
	LineTax       decimal.Decimal `json:"LineTax"`
	LineTotal     decimal.Decimal `json:"LineTotal"`
	Product       Product         `json:"Product"`
}

// Product is the embedded product record on an order line
type Product struct {
	GUID               string `json:"Guid"`
	ProductCode        string `json:"ProductCode"`
	ProductDescription string `json:"ProductDescription"`
}

// SalesOrderUpdate is the mutable field set accepted by the update endpoint
type SalesOrderUpdate struct {
	GUID              string `json:"Guid"`
	OrderStatus       string `json:"OrderStatus,omitempty"`
	CustomOrderStatus string `json:"CustomOrderStatus,omitempty"`
	CustomerRef       string `json:"CustomerRef,omitempty"`
	Comments          string `json:"Comments,omitempty"`
	SourceID          string `json:"SourceId,omitempty"`
	SalesOrderGroup   string `json:"SalesOrderGroup,omitempty"`

	DeliveryName           string `json:"DeliveryName,omitempty"`
	DeliveryStreetAddress  string `json:"DeliveryStreetAddress,omitempty"`
	DeliveryStreetAddress2 string `json:"DeliveryStreetAddress2,omitempty"`
	DeliverySuburb         string `json:"DeliverySuburb,omitempty"`
	DeliveryCity           string `json:"DeliveryCity,omitempty"`
	DeliveryRegion         string `json:"DeliveryRegion,omitempty"`
	DeliveryPostCode       string `json:"DeliveryPostCode,omitempty"`
	DeliveryCountry        string `json:"DeliveryCountry,omitempty"`
	DeliveryInstruction    string `json:"DeliveryInstruction,omitempty"`
	DeliveryMethod         string `json:"DeliveryMethod,omitempty"`
}

// SalesOrderQuery narrows a sales order listing; zero values are omitted
type SalesOrderQuery struct {
	OrderNumber   string
	OrderStatus   string
	CustomerCode  string
	ModifiedSince DotNetTime
	Page          int
	PageSize      int
}

// UpdateResult reports whether an update was sent and carries the payload
// hash for the caller to persist against the next attempt
type UpdateResult struct {
	Updated    bool
	SalesOrder *SalesOrder
	Hash       string
}

// SalesOrdersClient exposes the sales order endpoints
type SalesOrdersClient struct {
	client *Client
	logger *zap.Logger
}

// Query lists sales orders matching the filter
func (c *SalesOrdersClient) Query(ctx context.Context, query SalesOrderQuery) (*SalesOrderQueryResult, error) {
	params := url.Values{}
	if query.OrderNumber != "" {
		params.Set("orderNumber", query.OrderNumber)
	}
	if query.OrderStatus != "" {
		params.Set("orderStatus", query.OrderStatus)
	}
	if query.CustomerCode != "" {
		params.Set("customerCode", query.CustomerCode)
	}
	if !query.ModifiedSince.IsZero() {
		params.Set("modifiedSince", query.ModifiedSince.UTC().Format("2006-01-02"))
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(query.PageSize))
	}

	var result SalesOrderQueryResult
	if err := c.client.getJSON(ctx, "/SalesOrders", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get retrieves one sales order by its guid
func (c *SalesOrdersClient) Get(ctx context.Context, guid string) (*SalesOrder, error) {
	var order SalesOrder
	if err := c.client.getJSON(ctx, "/SalesOrders/"+guid, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Update sends a sales order update, unless previousHash proves the identical
// payload was already applied. Callers persist the returned hash and pass it
// back on the next sync cycle, which turns repeated no-op syncs into zero API
// calls.
func (c *SalesOrdersClient) Update(ctx context.Context, payload *SalesOrderUpdate, previousHash string) (*UpdateResult, error) {
	hash, err := UpdateHash(payload)
	if err != nil {
		return nil, err
	}
	if previousHash != "" && previousHash == hash {
		c.logger.Debug("payload unchanged, skipping update", zap.String("guid", payload.GUID))
		return &UpdateResult{Updated: false, Hash: hash}, nil
	}

	c.logger.Info("updating sales order", zap.String("guid", payload.GUID))
	body, err := c.client.do(ctx, http.MethodPut, "/SalesOrders", nil, payload)
	if err != nil {
		return nil, err
	}
	var order SalesOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}
	return &UpdateResult{Updated: true, SalesOrder: &order, Hash: hash}, nil
}

// Complete marks a sales order completed
func (c *SalesOrdersClient) Complete(ctx context.Context, guid string) error {
	c.logger.Info("completing sales order", zap.String("guid", guid))
	_, err := c.client.do(ctx, http.MethodPost, "/SalesOrders/"+guid+"/Complete", nil, nil)
	return err
}

// UpdateHash fingerprints an update payload. The payload is round-tripped
// through a map so the digest covers sorted field names, independent of
// struct declaration order.
func UpdateHash(payload *SalesOrderUpdate) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("unleashed: failed to hash payload: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return "", fmt.Errorf("unleashed: failed to hash payload: %w", err)
	}
	canonical, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("unleashed: failed to hash payload: %w", err)
	}
	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}
