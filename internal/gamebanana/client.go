package gamebanana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultBaseURL is the GameBanana v11 API root
	DefaultBaseURL = "https://gamebanana.com/apiv11"
	// DefaultGameID is Friday Night Funkin' on GameBanana
	DefaultGameID = 8694
	// DefaultPerPage is the page size used when a query sets none
	DefaultPerPage = 20

	userAgent = "modctl/1.0 (FNF mod manager)"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// Query selects a page of catalog results
type Query struct {
	Search  string
	Page    int // 1-based
	PerPage int
}

// Catalog is the read side of a mod hosting site
type Catalog interface {
	Search(ctx context.Context, q Query) (Response, error)
	Get(ctx context.Context, id int64) (Mod, error)
}

// Client talks to the GameBanana API
type Client struct {
	baseURL string
	gameID  int64
	perPage int
	logger  *log.Logger
	client  *http.Client
}

// NewClient creates a GameBanana API client
func NewClient(baseURL string, gameID int64, perPage int, timeout time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if gameID == 0 {
		gameID = DefaultGameID
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: baseURL,
		gameID:  gameID,
		perPage: perPage,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search lists catalog mods, optionally filtered by name
func (c *Client) Search(ctx context.Context, q Query) (Response, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = c.perPage
	}

	params := url.Values{}
	params.Set("_nPage", strconv.Itoa(q.Page))
	params.Set("_nPerpage", strconv.Itoa(q.PerPage))
	params.Set("_aFilters[Generic_Game]", strconv.FormatInt(c.gameID, 10))
	if q.Search != "" {
		params.Set("_sName", q.Search)
	}

	var index apiIndex
	if err := c.getJSON(ctx, c.baseURL+"/Mod/Index?"+params.Encode(), &index); err != nil {
		return Response{}, err
	}

	resp := Response{
		Mods:  make([]Mod, 0, len(index.Records)),
		Total: index.Metadata.RecordCount,
	}
	for _, rec := range index.Records {
		resp.Mods = append(resp.Mods, rec.toMod())
	}

	c.logger.Debug("Fetched catalog page", "query", q.Search, "page", q.Page, "results", len(resp.Mods), "total", resp.Total)
	return resp, nil
}

// Get fetches the profile of a single mod, including its download file
func (c *Client) Get(ctx context.Context, id int64) (Mod, error) {
	var rec apiRecord
	endpoint := fmt.Sprintf("%s/Mod/%d/ProfilePage", c.baseURL, id)
	if err := c.getJSON(ctx, endpoint, &rec); err != nil {
		return Mod{}, err
	}
	if rec.ID == 0 {
		rec.ID = id
	}
	return rec.toMod(), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
