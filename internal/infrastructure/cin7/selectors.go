package cin7

import "fmt"

// Selector tables for the vendor's console pages. All page coupling lives
// here: workflows address fields by logical name and the tables map them to
// CSS selectors or selector generators. The values track go.cin7.com page
// markup and break when the vendor changes it.

// loginSelectors covers the auth.cin7.com login and two-factor forms
var loginSelectors = struct {
	Username           string
	Password           string
	LoginButton        string
	LoginURLIdentifier string

	TwoFAURLIdentifier string
	TwoFACode          string
	TwoFAButton        string
}{
	Username:           "#usernameInput",
	Password:           "#passwordInput",
	LoginButton:        "#Identity-Forms  [type='submit']",
	LoginURLIdentifier: "Login",

	TwoFAURLIdentifier: "LoginWith2fa",
	TwoFACode:          "#Input_TwoFactorCode",
	TwoFAButton:        "#Identity-Forms  [type='submit']",
}

// creditNoteSelectors covers the transaction entry page in credit note mode
var creditNoteSelectors = struct {
	SKUFields              string
	InternalCommentsFields string
	QtyMovedField          func(row int) string

	ActualQtyMovedField string
	BatchNumberField    string
	SaveIntakeButton    string

	CompletedDateField string
	CompletedTimeField string

	ApproveButton string
	SaveButton    string
	AdminButton   string
	VoidButton    string
}{
	SKUFields:              "#StockGrid tr td:nth-child(4) pre",
	InternalCommentsFields: "#StockGrid tr td:nth-child(18) pre",
	QtyMovedField: func(row int) string {
		return fmt.Sprintf("#StockGrid tr:nth-child(%d) td:nth-child(13)", row)
	},

	ActualQtyMovedField: "#SerialNumbers_intQtyItem",
	BatchNumberField:    "#SerialNumbers_strSerialAvailable",
	SaveIntakeButton:    "#SerialNumber_SaveButton",

	CompletedDateField: "#ctl00_ContentPlaceHolder1_datOrders_87",
	CompletedTimeField: "#ctl00_ContentPlaceHolder1_datOrders_87_Time",

	ApproveButton: "#ctl00_ContentPlaceHolder1_ApproveButton",
	SaveButton:    "#ctl00_ContentPlaceHolder1_SaveButton",
	AdminButton:   "#AdminButton",
	VoidButton:    "#ctl00_ContentPlaceHolder1_DeleteLinkButton",
}

// salesOrderSelectors covers the transaction entry page in sales order mode
var salesOrderSelectors = struct {
	AdminButton string
	VoidButton  string
	SaveButton  string

	OrderDateField      string
	OrderTimeField      string
	InvoiceDateField    string
	InvoiceTimeField    string
	DispatchedDateField string
	DispatchedTimeField string
	CompletedDateField  string
	CompletedTimeField  string

	FirstNameField string
	LastNameField  string
}{
	AdminButton: "#AdminButton",
	VoidButton:  "#ctl00_ContentPlaceHolder1_DeleteLinkButton",
	SaveButton:  "#ctl00_ContentPlaceHolder1_SaveButton",

	OrderDateField:      "#ctl00_ContentPlaceHolder1_datOrders_13",
	OrderTimeField:      "#ctl00_ContentPlaceHolder1_datOrders_13_Time",
	InvoiceDateField:    "#ctl00_ContentPlaceHolder1_datOrders_15",
	InvoiceTimeField:    "#ctl00_ContentPlaceHolder1_datOrders_15_Time",
	DispatchedDateField: "#ctl00_ContentPlaceHolder1_datOrders_41",
	DispatchedTimeField: "#ctl00_ContentPlaceHolder1_datOrders_41_Time",
	CompletedDateField:  "#ctl00_ContentPlaceHolder1_datOrders_87",
	CompletedTimeField:  "#ctl00_ContentPlaceHolder1_datOrders_87_Time",

	FirstNameField: "#ctl00_ContentPlaceHolder1_txtOrders_4",
	LastNameField:  "#ctl00_ContentPlaceHolder1_txtOrders_5",
}

// transactionEntryURL deep-links into one transaction page
func transactionEntryURL(appLinkID, orderID string) string {
	return fmt.Sprintf("%s?idCustomerAppsLink=%s&OrderId=%s", TransactionEntryURL, appLinkID, orderID)
}

// lineItemScrapeJS extracts SKU and barcode per visible stock grid row. The
// barcode rides in the line comments column behind a "Barcode:" prefix. Rows
// still showing the search placeholder are skipped. nthChild is offset by 2:
// the grid's first tr is the header and nth-child is 1-based.
const lineItemScrapeJS = `
(() => {
	const skuFields = document.querySelectorAll(%q);
	const commentFields = document.querySelectorAll(%q);
	return Array.from(skuFields).map((skuField, index) => {
		const comment = (commentFields[index]?.innerHTML ?? "").trim();
		return {
			sku: (skuField.innerHTML ?? "").trim(),
			nthChild: index + 2,
			barcode: comment.includes("Barcode:")
				? (comment.split("Barcode:")[1] ?? "").trim()
				: "",
		};
	}).filter(row => row.sku !== "" && !row.sku.includes("<i>Search...</i>"));
})()`

// clearFieldJS empties an input's value directly; SendKeys appends otherwise
const clearFieldJS = `
(() => {
	const input = document.querySelector(%q);
	if (input) input.value = "";
	return true;
})()`

// readBatchFieldJS inspects the batch number input: a read-only field means
// the SKU is FIFO-managed and the batch code cannot be typed
const readBatchFieldJS = `
(() => {
	const input = document.querySelector(%q);
	if (!input) return "";
	if (input.readOnly) return "FIFO";
	input.value = "";
	return input.value ?? "";
})()`

// readInputValueJS returns an input's current value
const readInputValueJS = `
(() => {
	const input = document.querySelector(%q);
	return input ? (input.value ?? "") : "";
})()`
