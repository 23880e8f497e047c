package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"listing-map/models"
	"listing-map/utils"
)

const (
	boardsQuery = `query { boards { id name } }`
	itemsQuery  = `query{boards(ids:[%s]){id name items_page{items{id name column_values{id text value column{title settings_str}}}}}}`
)

// Client queries the monday.com GraphQL API.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *utils.Logger
	retry    *utils.RetryConfig
}

// New creates a Client for the given endpoint and API token.
func New(endpoint, token string, maxRetries int, logger *utils.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

type gqlRequest struct {
	Query string `json:"query"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// wire shapes; nullable strings come back as JSON null
type wireColumnValue struct {
	ID     string  `json:"id"`
	Text   *string `json:"text"`
	Value  *string `json:"value"`
	Column struct {
		Title       string  `json:"title"`
		SettingsStr *string `json:"settings_str"`
	} `json:"column"`
}

type wireItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ColumnValues []wireColumnValue `json:"column_values"`
}

type wireBoard struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemsPage struct {
		Items []wireItem `json:"items"`
	} `json:"items_page"`
}

// Boards fetches the board catalog.
func (c *Client) Boards(ctx context.Context) ([]models.BoardRef, error) {
	var data struct {
		Boards []models.BoardRef `json:"boards"`
	}
	if err := c.query(ctx, "boards", boardsQuery, &data); err != nil {
		return nil, err
	}
	c.logger.Debug("[monday] Loaded %d boards", len(data.Boards))
	return data.Boards, nil
}

// Items fetches the first items page of every listed board.
func (c *Client) Items(ctx context.Context, boardIDs []string) ([]models.RawBoard, error) {
	if len(boardIDs) == 0 {
		return nil, nil
	}

	var data struct {
		Boards []wireBoard `json:"boards"`
	}
	q := fmt.Sprintf(itemsQuery, strings.Join(boardIDs, ","))
	if err := c.query(ctx, "items", q, &data); err != nil {
		return nil, err
	}

	boards := make([]models.RawBoard, 0, len(data.Boards))
	total := 0
	for _, wb := range data.Boards {
		b := models.RawBoard{ID: wb.ID, Name: wb.Name, Items: make([]models.RawItem, 0, len(wb.ItemsPage.Items))}
		for _, wi := range wb.ItemsPage.Items {
			b.Items = append(b.Items, toRawItem(wi))
		}
		total += len(b.Items)
		boards = append(boards, b)
	}

	c.logger.Info("[monday] Fetched %d items from %d boards", total, len(boards))
	return boards, nil
}

func toRawItem(wi wireItem) models.RawItem {
	item := models.RawItem{ID: wi.ID, Name: wi.Name, ColumnValues: make([]models.RawColumnValue, 0, len(wi.ColumnValues))}
	for _, wc := range wi.ColumnValues {
		item.ColumnValues = append(item.ColumnValues, models.RawColumnValue{
			ID:    wc.ID,
			Text:  deref(wc.Text),
			Value: deref(wc.Value),
			Column: models.ColumnMeta{
				Title:       wc.Column.Title,
				SettingsStr: deref(wc.Column.SettingsStr),
			},
		})
	}
	return item
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (c *Client) query(ctx context.Context, name, q string, out any) error {
	body, err := json.Marshal(gqlRequest{Query: q})
	if err != nil {
		return fmt.Errorf("monday: encode %s query: %w", name, err)
	}

	var resp gqlResponse
	err = c.retry.Do(ctx, "monday-"+name, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", c.token)

		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d: %s", res.StatusCode, truncate(string(raw), 200))
		}
		resp = gqlResponse{}
		return json.Unmarshal(raw, &resp)
	})
	if err != nil {
		return fmt.Errorf("monday: %s: %w", name, err)
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("monday: %s: %s", name, strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("monday: decode %s: %w", name, err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
