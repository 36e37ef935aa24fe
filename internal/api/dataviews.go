package api

import (
	"context"
	nethttp "net/http"
	"net/url"
	"strconv"

	"github.com/mlops-tools/dfa-wizard/internal/constants"
	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

type findResponse struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	Total        int `json:"total"`
	SavedObjects []struct {
		ID         string `json:"id"`
		Attributes struct {
			Title *string `json:"title"`
		} `json:"attributes"`
	} `json:"saved_objects"`
}

// FindDataViews lists every data view in the space, following pagination.
// Saved objects without a title attribute are skipped; an empty title is kept.
func (c *Client) FindDataViews(ctx context.Context) ([]wizard.DataView, error) {
	var views []wizard.DataView
	seen := 0
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("type", "index-pattern")
		query.Set("fields", "title")
		query.Set("per_page", strconv.Itoa(constants.DataViewPageSize))
		query.Set("page", strconv.Itoa(page))

		var resp findResponse
		if err := c.do(ctx, nethttp.MethodGet, "/api/saved_objects/_find", query, nil, &resp); err != nil {
			return nil, err
		}
		seen += len(resp.SavedObjects)
		for _, so := range resp.SavedObjects {
			if so.Attributes.Title == nil {
				continue
			}
			views = append(views, wizard.DataView{ID: so.ID, Title: *so.Attributes.Title})
		}

		if len(resp.SavedObjects) == 0 || seen >= resp.Total {
			return views, nil
		}
	}
}
