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

// CreditNotesClient exposes the credit note operations. CRUD and queries go
// through the REST API; stock-receipt intake with quantity mismatches and
// voiding are console-only and run through the UI workflow engine.
type CreditNotesClient struct {
	config  *Config
	api     *apiChannel
	session browserSession
	logger  *zap.Logger
}

// Get retrieves one credit note by id
func (c *CreditNotesClient) Get(ctx context.Context, id string) (*CreditNote, error) {
	var note CreditNote
	if err := c.api.getJSON(ctx, "/CreditNotes/"+id, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// GetByOrderRefs retrieves credit notes raised against any of the given sales
// references
func (c *CreditNotesClient) GetByOrderRefs(ctx context.Context, refs []string) ([]CreditNote, error) {
	clauses := make([]string, 0, len(refs))
	for _, ref := range refs {
		clauses = append(clauses, fmt.Sprintf("SalesReference='%s'", ref))
	}
	return c.Search(ctx, strings.Join(clauses, " OR "))
}

// GetByIds retrieves credit notes matching any of the given ids
func (c *CreditNotesClient) GetByIds(ctx context.Context, ids []string) ([]CreditNote, error) {
	clauses := make([]string, 0, len(ids))
	for _, id := range ids {
		clauses = append(clauses, "Id="+id)
	}
	return c.Search(ctx, strings.Join(clauses, " OR "))
}

// Search runs a vendor filter expression, passed through verbatim
func (c *CreditNotesClient) Search(ctx context.Context, where string) ([]CreditNote, error) {
	query := url.Values{}
	query.Set("where", where)

	var notes []CreditNote
	if err := c.api.getJSON(ctx, "/CreditNotes", query, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Create creates one credit note and returns its id
func (c *CreditNotesClient) Create(ctx context.Context, note *CreditNote) (string, error) {
	c.logger.Info("creating credit note", zap.String("sales_reference", note.SalesReference))
	acks, err := c.api.upsert(ctx, http.MethodPost, "/CreditNotes", []*CreditNote{note})
	if err != nil {
		return "", err
	}
	if err := integration.FirstAckError(acks); err != nil {
		return "", err
	}
	return strconv.FormatInt(acks[0].ID, 10), nil
}

// CreateBatch creates credit notes and returns the raw acknowledgement array
func (c *CreditNotesClient) CreateBatch(ctx context.Context, notes []*CreditNote) ([]integration.UpsertAck, error) {
	return c.api.upsert(ctx, http.MethodPost, "/CreditNotes", notes)
}

// Update updates one credit note
func (c *CreditNotesClient) Update(ctx context.Context, note *CreditNote) (string, error) {
	c.logger.Info("updating credit note", zap.Int64("id", note.ID))
	acks, err := c.api.upsert(ctx, http.MethodPut, "/CreditNotes", []*CreditNote{note})
	if err != nil {
		return "", err
	}
	if err := integration.FirstAckError(acks); err != nil {
		return "", err
	}
	return strconv.FormatInt(acks[0].ID, 10), nil
}

// UpdateBatch updates credit notes and returns the raw acknowledgement array
func (c *CreditNotesClient) UpdateBatch(ctx context.Context, notes []*CreditNote) ([]integration.UpsertAck, error) {
	return c.api.upsert(ctx, http.MethodPut, "/CreditNotes", notes)
}

// ---------------------------------------------------------------------------
// Stock Receipt Intake
// ---------------------------------------------------------------------------

// scrapedLine is one stock grid row read off the live transaction page
type scrapedLine struct {
	SKU      string `json:"sku"`
	NthChild int    `json:"nthChild"`
	Barcode  string `json:"barcode"`
}

// CreateStockReceipts completes stock intake for a batch of credit notes.
//
// Receipts whose lines restock exactly what was returned need no manual
// intake: they are completed in one batched API update (completion timestamp
// plus approval flag). Receipts with a quantity mismatch require manual
// receipt entry through the web console and run the intake workflow per
// item. One result per receipt, in input order regardless of partitioning.
func (c *CreditNotesClient) CreateStockReceipts(ctx context.Context, receipts []StockReceipt) ([]integration.BatchResult, error) {
	var uiReceipts, apiReceipts []StockReceipt
	for _, receipt := range receipts {
		if receipt.RequiresUI() {
			uiReceipts = append(uiReceipts, receipt)
		} else {
			apiReceipts = append(apiReceipts, receipt)
		}
	}

	var results []integration.BatchResult

	if len(apiReceipts) > 0 {
		apiResults, err := c.completeReceiptsViaAPI(ctx, apiReceipts)
		if err != nil {
			return nil, err
		}
		results = append(results, apiResults...)
	}

	if len(uiReceipts) > 0 {
		byID := make(map[string]StockReceipt, len(uiReceipts))
		ids := make([]string, 0, len(uiReceipts))
		for _, receipt := range uiReceipts {
			byID[receipt.ID] = receipt
			ids = append(ids, receipt.ID)
		}

		c.logger.Info("creating stock receipts via console", zap.Int("count", len(ids)))
		uiResults, err := runBatch(ctx, c.session, c.logger, ids, func(ctx context.Context, page Page, id string) error {
			return c.enterStockReceipt(ctx, page, byID[id])
		})
		if err != nil {
			return nil, err
		}
		results = append(results, uiResults...)
	}

	inputIDs := make([]string, 0, len(receipts))
	for _, receipt := range receipts {
		inputIDs = append(inputIDs, receipt.ID)
	}
	return integration.SortResults(inputIDs, results), nil
}

// completeReceiptsViaAPI marks matching receipts completed and approved in
// one batched update
func (c *CreditNotesClient) completeReceiptsViaAPI(ctx context.Context, receipts []StockReceipt) ([]integration.BatchResult, error) {
	updates := make([]*CreditNote, 0, len(receipts))
	for _, receipt := range receipts {
		id, err := strconv.ParseInt(receipt.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cin7: invalid credit note id %q: %w", receipt.ID, err)
		}
		updates = append(updates, &CreditNote{
			ID:            id,
			CompletedDate: time.Now().UTC().Format(time.RFC3339),
			IsApproved:    true,
		})
	}

	acks, err := c.UpdateBatch(ctx, updates)
	if err != nil {
		return nil, err
	}

	results := make([]integration.BatchResult, 0, len(acks))
	for i, ack := range acks {
		results = append(results, integration.BatchResult{
			ItemID:       receipts[i].ID,
			Success:      ack.Success,
			ErrorMessage: strings.Join(ack.Errors, ", "),
		})
	}
	return results, nil
}

// enterStockReceipt drives the console intake for one credit note: navigate
// to its transaction page, pre-populate the completion date fields, then walk
// the scraped stock grid entering quantity and batch per row, and finally
// approve the document (or plain-save when approval is not offered).
func (c *CreditNotesClient) enterStockReceipt(ctx context.Context, page Page, receipt StockReceipt) error {
	c.logger.Info("creating stock receipt", zap.String("credit_note_id", receipt.ID))

	page.SettleNavigation(ctx, settleTimeout)
	if err := page.Navigate(ctx, transactionEntryURL(c.config.AppLinkIDs.CreditNotes, receipt.ID)); err != nil {
		return err
	}

	lines, err := c.scrapeLineItems(ctx, page)
	if err != nil {
		return err
	}
	c.logger.Debug("scraped stock grid", zap.Int("rows", len(lines)))

	// Date fields first: completion date/time in the document's timezone
	occurredAt := receipt.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	if err := page.SendKeys(ctx, creditNoteSelectors.CompletedDateField, timeutil.FormatDate(occurredAt, receipt.Timezone)); err != nil {
		return err
	}
	if err := page.SendKeys(ctx, creditNoteSelectors.CompletedTimeField, timeutil.FormatTime(occurredAt, receipt.Timezone)); err != nil {
		return err
	}

	for _, line := range lines {
		if err := c.enterIntakeRow(ctx, page, receipt, line); err != nil {
			return err
		}
	}

	// Approval may be withheld by the vendor depending on document state;
	// when the control does not appear, fall back to a plain save.
	if probeVisible(ctx, page, creditNoteSelectors.ApproveButton, 4*time.Second) {
		return page.ClickAndNavigate(ctx, creditNoteSelectors.ApproveButton, c.config.NavigationTimeout)
	}
	return page.ClickAndNavigate(ctx, creditNoteSelectors.SaveButton, c.config.NavigationTimeout)
}

// scrapeLineItems reads SKU, row index and barcode for every populated stock
// grid row
func (c *CreditNotesClient) scrapeLineItems(ctx context.Context, page Page) ([]scrapedLine, error) {
	var lines []scrapedLine
	js := fmt.Sprintf(lineItemScrapeJS, creditNoteSelectors.SKUFields, creditNoteSelectors.InternalCommentsFields)
	if err := page.Evaluate(ctx, js, &lines); err != nil {
		return nil, fmt.Errorf("cin7: failed to scrape line items: %w", err)
	}
	return lines, nil
}

// enterIntakeRow opens one row's quantity-entry control and fills it in
func (c *CreditNotesClient) enterIntakeRow(ctx context.Context, page Page, receipt StockReceipt, line scrapedLine) error {
	if err := page.Click(ctx, creditNoteSelectors.QtyMovedField(line.NthChild)); err != nil {
		return err
	}
	if err := page.WaitVisible(ctx, creditNoteSelectors.ActualQtyMovedField, c.config.SelectorTimeout); err != nil {
		return err
	}
	if err := page.Evaluate(ctx, fmt.Sprintf(clearFieldJS, creditNoteSelectors.ActualQtyMovedField), nil); err != nil {
		return err
	}

	// A read-only batch field marks a FIFO-managed SKU; the batch code
	// cannot be typed for those
	var batchState string
	if err := page.Evaluate(ctx, fmt.Sprintf(readBatchFieldJS, creditNoteSelectors.BatchNumberField), &batchState); err != nil {
		return err
	}

	match := matchReceiptLine(receipt.Lines, line)

	// Intake reduces outstanding quantity, so the entered value is always
	// the negative of the absolute restock quantity
	qty := "0"
	if match != nil {
		qty = match.RestockQty.Abs().Neg().String()
	}
	if err := page.SendKeys(ctx, creditNoteSelectors.ActualQtyMovedField, qty); err != nil {
		return err
	}

	if batchState != "FIFO" && match != nil {
		if err := page.SendKeys(ctx, creditNoteSelectors.BatchNumberField, match.Batch); err != nil {
			return err
		}
	}

	if err := page.Click(ctx, creditNoteSelectors.SaveIntakeButton); err != nil {
		return err
	}
	// The vendor's server-side form state needs a beat to settle between rows
	page.Pause(ctx, time.Second)
	return nil
}

// matchReceiptLine pairs a scraped grid row with the caller's receipt line:
// barcode match first, then SKU prefix match.
func matchReceiptLine(lines []StockReceiptLine, scraped scrapedLine) *StockReceiptLine {
	for i := range lines {
		if scraped.Barcode != "" && strings.EqualFold(scraped.Barcode, lines[i].Barcode) {
			return &lines[i]
		}
		if strings.HasPrefix(strings.ToLower(lines[i].SKU), strings.ToLower(scraped.SKU)) {
			return &lines[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Void
// ---------------------------------------------------------------------------

// Void voids credit notes through the web console. One result per id, in
// input order.
func (c *CreditNotesClient) Void(ctx context.Context, creditNoteIDs []string) ([]integration.BatchResult, error) {
	return runBatch(ctx, c.session, c.logger, creditNoteIDs, func(ctx context.Context, page Page, id string) error {
		c.logger.Info("voiding credit note", zap.String("credit_note_id", id))
		return voidTransaction(ctx, page, c.config,
			transactionEntryURL(c.config.AppLinkIDs.CreditNotes, id),
			creditNoteSelectors.AdminButton, creditNoteSelectors.VoidButton)
	})
}

// ---------------------------------------------------------------------------
// Internal Comments
// ---------------------------------------------------------------------------

// InternalCommentsData decodes the structured payload riding in the credit
// note's internal comments field
func (c *CreditNotesClient) InternalCommentsData(note *CreditNote, separator string) map[string]string {
	return DecodeCreditNoteComments(note.InternalComments, separator)
}

// InternalCommentsString encodes data for the internal comments field
func (c *CreditNotesClient) InternalCommentsString(data map[string]string, separator string) string {
	return EncodeCreditNoteComments(data, separator)
}
