package cin7

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Sales Orders
// ---------------------------------------------------------------------------

// SalesOrder is a Cin7 sales order record
type SalesOrder struct {
	ID        int64  `json:"id,omitempty"`
	Reference string `json:"reference,omitempty"`

	CreatedDate  string `json:"createdDate,omitempty"`
	ModifiedDate string `json:"modifiedDate,omitempty"`

	LineItems    []SalesOrderItem `json:"lineItems,omitempty"`
	ProductTotal decimal.Decimal  `json:"productTotal,omitempty"`

	CostCenter         string `json:"costCenter,omitempty"`
	AlternativeTaxRate string `json:"alternativeTaxRate,omitempty"`
	Stage              string `json:"stage,omitempty"`
	MemberID           int64  `json:"memberId,omitempty"`
	MemberEmail        string `json:"memberEmail,omitempty"`
	PaymentTerms       string `json:"paymentTerms,omitempty"`
	BranchID           int64  `json:"branchId,omitempty"`

	DeliveryFirstName  string `json:"deliveryFirstName,omitempty"`
	DeliveryLastName   string `json:"deliveryLastName,omitempty"`
	DeliveryCompany    string `json:"deliveryCompany,omitempty"`
	DeliveryAddress1   string `json:"deliveryAddress1,omitempty"`
	DeliveryAddress2   string `json:"deliveryAddress2,omitempty"`
	DeliveryCity       string `json:"deliveryCity,omitempty"`
	DeliveryState      string `json:"deliveryState,omitempty"`
	DeliveryPostalCode string `json:"deliveryPostalCode,omitempty"`
	DeliveryCountry    string `json:"deliveryCountry,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
	CustomerOrderNo    string `json:"customerOrderNo,omitempty"`

	TrackingCode          string `json:"trackingCode,omitempty"`
	DispatchedDate        string `json:"dispatchedDate,omitempty"`
	LogisticsCarrier      string `json:"logisticsCarrier,omitempty"`
	EstimatedDeliveryDate string `json:"estimatedDeliveryDate,omitempty"`

	InvoiceDate         string          `json:"invoiceDate,omitempty"`
	DiscountTotal       decimal.Decimal `json:"discountTotal,omitempty"`
	DiscountDescription string          `json:"discountDescription,omitempty"`
	FreightTotal        decimal.Decimal `json:"freightTotal,omitempty"`
	FreightDescription  string          `json:"freightDescription,omitempty"`
	Total               decimal.Decimal `json:"total,omitempty"`
	TaxStatus           string          `json:"taxStatus,omitempty"` // Incl, Excl or Exempt
	TaxRate             decimal.Decimal `json:"taxRate,omitempty"`

	CustomFields map[string]any `json:"customFields,omitempty"`

	InternalComments     string `json:"internalComments,omitempty"`
	DeliveryInstructions string `json:"deliveryInstructions,omitempty"`

	LogisticsStatus int `json:"logisticsStatus,omitempty"`
}

// SalesOrderItem is one order line
type SalesOrderItem struct {
	Code       string          `json:"code,omitempty"`
	Name       string          `json:"name,omitempty"`
	Qty        decimal.Decimal `json:"qty"`
	Option1    string          `json:"option1,omitempty"`
	Option2    string          `json:"option2,omitempty"`
	Option3    string          `json:"option3,omitempty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Discount   decimal.Decimal `json:"discount,omitempty"`
	QtyShipped decimal.Decimal `json:"qtyShipped,omitempty"`
	ActualQty  decimal.Decimal `json:"actualQty,omitempty"`
}

// DateCorrection carries the replacement timestamps for one sales order whose
// document dates must be fixed through the web console. Zones follow the
// order's declared timezone.
type DateCorrection struct {
	ID       string
	Timezone string

	OrderDate      time.Time
	InvoiceDate    time.Time
	DispatchedDate time.Time
	CompletedDate  time.Time
}

// ---------------------------------------------------------------------------
// Credit Notes
// ---------------------------------------------------------------------------

// CreditNote is a Cin7 credit note record
type CreditNote struct {
	ID             int64  `json:"id,omitempty"`
	Reference      string `json:"reference,omitempty"`
	SalesReference string `json:"salesReference,omitempty"`
	CreatedDate    string `json:"createdDate,omitempty"`
	ModifiedDate   string `json:"modifiedDate,omitempty"`

	LineItems []CreditNoteItem `json:"lineItems,omitempty"`

	MemberEmail string `json:"memberEmail,omitempty"`

	InvoiceDate         string          `json:"invoiceDate,omitempty"`
	CompletedDate       string          `json:"completedDate,omitempty"`
	DiscountTotal       decimal.Decimal `json:"discountTotal,omitempty"`
	DiscountDescription string          `json:"discountDescription,omitempty"`
	FreightTotal        decimal.Decimal `json:"freightTotal,omitempty"`
	FreightDescription  string          `json:"freightDescription,omitempty"`
	Total               decimal.Decimal `json:"total,omitempty"`
	BranchID            int64           `json:"branchId,omitempty"`

	IsApproved bool `json:"isApproved,omitempty"`

	InternalComments     string          `json:"internalComments,omitempty"`
	Surcharge            decimal.Decimal `json:"surcharge,omitempty"`
	SurchargeDescription string          `json:"surchargeDescription,omitempty"`
}

// CreditNoteItem is one credit note line
type CreditNoteItem struct {
	Code            string          `json:"code,omitempty"`
	Name            string          `json:"name,omitempty"`
	ProductOptionID int64           `json:"productOptionId,omitempty"`
	LineComments    string          `json:"lineComments,omitempty"`
	Qty             decimal.Decimal `json:"qty"`
	Option1         string          `json:"option1,omitempty"`
	Option2         string          `json:"option2,omitempty"`
	Option3         string          `json:"option3,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Discount        decimal.Decimal `json:"discount,omitempty"`
	QtyShipped      decimal.Decimal `json:"qtyShipped,omitempty"`
}

// StockReceipt instructs a stock intake against one credit note. When every
// line restocks exactly what was returned the receipt completes through the
// API; any mismatch requires manual intake through the web console.
type StockReceipt struct {
	ID         string
	OccurredAt time.Time
	Timezone   string
	Lines      []StockReceiptLine
}

// StockReceiptLine is one line of a stock receipt
type StockReceiptLine struct {
	SKU        string
	Barcode    string
	ReturnQty  decimal.Decimal
	RestockQty decimal.Decimal
	Batch      string
}

// RequiresUI reports whether this receipt needs the console intake workflow
func (r StockReceipt) RequiresUI() bool {
	for _, line := range r.Lines {
		if !line.ReturnQty.Equal(line.RestockQty) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Payments, Product Options, Stock
// ---------------------------------------------------------------------------

// Payment is a Cin7 payment record
type Payment struct {
	ID             string          `json:"id,omitempty"`
	TransactionRef string          `json:"transactionRef,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method,omitempty"`
	Comments       string          `json:"comments,omitempty"`
	OrderID        string          `json:"orderId,omitempty"`
	OrderRef       string          `json:"orderRef,omitempty"`
	PaymentDate    string          `json:"paymentDate,omitempty"`
	CreatedDate    string          `json:"createdDate,omitempty"`
	ModifiedDate   string          `json:"modifiedDate,omitempty"`
}

// ProductOption is a sellable product variant
type ProductOption struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	Code         string          `json:"code"`
	Barcode      string          `json:"barcode"`
	Option1      string          `json:"option1,omitempty"`
	Option2      string          `json:"option2,omitempty"`
	Option3      string          `json:"option3,omitempty"`
	RetailPrice  decimal.Decimal `json:"retailPrice,omitempty"`
	Status       string          `json:"status,omitempty"`
	ModifiedDate string          `json:"modifiedDate,omitempty"`
}

// Stock is one stock level row
type Stock struct {
	ProductID       int64           `json:"productId"`
	ProductOptionID int64           `json:"productOptionId"`
	ModifiedDate    string          `json:"modifiedDate"`
	StyleCode       string          `json:"styleCode"`
	Code            string          `json:"code"`
	Barcode         string          `json:"barcode"`
	BranchID        int64           `json:"branchId"`
	Size            string          `json:"size"`
	Available       decimal.Decimal `json:"available"`
	StockOnHand     decimal.Decimal `json:"stockOnHand"`
	OpenSales       decimal.Decimal `json:"openSales"`
	Incoming        decimal.Decimal `json:"incoming"`
	Virtual         decimal.Decimal `json:"virtual"`
	Holding         decimal.Decimal `json:"holding"`
}

// QueryOrder is an optional sort directive for list queries
type QueryOrder struct {
	Field     string
	Direction string // ASC or DESC
}
