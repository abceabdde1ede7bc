package cin7

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ProductOptionsClient exposes read-only product variant lookups
type ProductOptionsClient struct {
	api *apiChannel
}

// Get retrieves one product option by id
func (c *ProductOptionsClient) Get(ctx context.Context, id string) (*ProductOption, error) {
	var option ProductOption
	if err := c.api.getJSON(ctx, "/ProductOptions/"+id, nil, &option); err != nil {
		return nil, err
	}
	return &option, nil
}

// GetByBarcodes retrieves product options matching any of the given barcodes
func (c *ProductOptionsClient) GetByBarcodes(ctx context.Context, barcodes []string) ([]ProductOption, error) {
	clauses := make([]string, 0, len(barcodes))
	for _, barcode := range barcodes {
		clauses = append(clauses, fmt.Sprintf("barcode='%s'", barcode))
	}
	return c.Search(ctx, strings.Join(clauses, " OR "))
}

// GetByIds retrieves product options matching any of the given ids
func (c *ProductOptionsClient) GetByIds(ctx context.Context, ids []string) ([]ProductOption, error) {
	clauses := make([]string, 0, len(ids))
	for _, id := range ids {
		clauses = append(clauses, "Id="+id)
	}
	return c.Search(ctx, strings.Join(clauses, " OR "))
}

// Search runs a vendor filter expression, passed through verbatim
func (c *ProductOptionsClient) Search(ctx context.Context, where string) ([]ProductOption, error) {
	query := url.Values{}
	query.Set("where", where)

	var options []ProductOption
	if err := c.api.getJSON(ctx, "/ProductOptions", query, &options); err != nil {
		return nil, err
	}
	return options, nil
}
