package cin7

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// StockLevelsClient exposes stock level queries
type StockLevelsClient struct {
	api *apiChannel
}

// Query lists stock level rows for a vendor filter expression with paging and
// an optional sort order
func (c *StockLevelsClient) Query(ctx context.Context, where string, page, rows int, order *QueryOrder) ([]Stock, error) {
	if page <= 0 {
		page = 1
	}
	if rows <= 0 {
		rows = 100
	}

	query := url.Values{}
	query.Set("where", where)
	query.Set("page", strconv.Itoa(page))
	query.Set("rows", strconv.Itoa(rows))
	if order != nil {
		query.Set("order", fmt.Sprintf("%s %s", order.Field, order.Direction))
	}

	var stock []Stock
	if err := c.api.getJSON(ctx, "/Stock", query, &stock); err != nil {
		return nil, err
	}
	return stock, nil
}
