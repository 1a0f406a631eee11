package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
	"github.com/kitbuilder587/gcsearch-plugin/internal/search"
)

type Client struct {
	Results []search.SearchResult
	Error   error
	Delay   time.Duration

	CallCount   int
	LastRequest search.SearchRequest
	AllRequests []search.SearchRequest

	// креды, с которыми фабрика собирала клиент
	Credentials []domain.Credentials

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithResults(results []search.SearchResult) *Client {
	c.Results = results
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

// Factory отдает этот же мок на любые креды и запоминает их.
func (c *Client) Factory() search.Factory {
	return func(ctx context.Context, creds domain.Credentials) (search.Searcher, error) {
		c.mu.Lock()
		c.Credentials = append(c.Credentials, creds)
		c.mu.Unlock()
		return c, nil
	}
}

// Search mirrors the real client: it returns at most NumResults items in the
// configured order and an empty slice when nothing is configured.
func (c *Client) Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastRequest = req
	c.AllRequests = append(c.AllRequests, req)
	delay := c.Delay
	err := c.Error
	results := c.Results
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}

	n := len(results)
	if req.NumResults > 0 && req.NumResults < n {
		n = req.NumResults
	}
	out := make([]search.SearchResult, n)
	copy(out, results[:n])

	return &search.SearchResponse{
		Query:   req.Query,
		Results: out,
	}, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastRequest = search.SearchRequest{}
	c.AllRequests = nil
	c.Credentials = nil
}
