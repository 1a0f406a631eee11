package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
	"github.com/kitbuilder587/gcsearch-plugin/internal/search"
)

type Config struct {
	APIKey   string
	EngineID string
	// BaseURL переопределяет эндпоинт API, нужен для тестов и прокси
	BaseURL  string
	Timeout  time.Duration
	Language string
}

type Client struct {
	engineID string
	language string
	timeout  time.Duration
	service  *customsearch.Service
	logger   *zap.Logger
}

func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if cfg.EngineID == "" {
		return nil, domain.ErrMissingEngineID
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Language == "" {
		cfg.Language = search.DefaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}

	return &Client{
		engineID: cfg.EngineID,
		language: cfg.Language,
		timeout:  cfg.Timeout,
		service:  svc,
		logger:   logger,
	}, nil
}

// NewFactory возвращает фабрику, которая на каждый вызов строит новый клиент
// из base, подменяя ключ и engine id.
func NewFactory(base Config, logger *zap.Logger) search.Factory {
	return func(ctx context.Context, creds domain.Credentials) (search.Searcher, error) {
		cfg := base
		cfg.APIKey = creds.APIKey
		cfg.EngineID = creds.EngineID
		return New(ctx, cfg, logger)
	}
}

// Search делает ровно один вызов cse.list, без ретраев.
func (c *Client) Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	if req.NumResults <= 0 {
		req.NumResults = domain.DefaultNumResults
	}
	if req.Language == "" {
		req.Language = c.language
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.service.Cse.List().
		Q(req.Query).
		Num(int64(req.NumResults)).
		Cx(c.engineID).
		Lr(req.Language).
		Context(ctx).
		Do()
	if err != nil {
		c.logger.Debug("custom search request failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil, classifyError(err)
	}

	c.logger.Debug("custom search request done",
		zap.Int("num", req.NumResults),
		zap.Int("items", len(resp.Items)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return toSearchResponse(req.Query, resp), nil
}

// classifyError оборачивает ошибку сентинелом, исходная ошибка остается в цепочке
// и достается через errors.As(err, *googleapi.Error).
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", search.ErrSearchFailed, err)
	}

	if hasReason(apiErr, "keyInvalid") {
		return fmt.Errorf("%w: %w", search.ErrUnauthorized, err)
	}

	switch apiErr.Code {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", search.ErrInvalidRequest, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", search.ErrUnauthorized, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", search.ErrRateLimit, err)
	default:
		return fmt.Errorf("%w: %w", search.ErrSearchFailed, err)
	}
}

func hasReason(apiErr *googleapi.Error, reason string) bool {
	for _, item := range apiErr.Errors {
		if item.Reason == reason {
			return true
		}
	}
	return false
}

// Items может отсутствовать совсем (пустая выдача) - тогда пустой список.
// Каждый элемент выдачи дает ровно один результат, null - пустой.
func toSearchResponse(query string, resp *customsearch.Search) *search.SearchResponse {
	results := make([]search.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil {
			results = append(results, search.SearchResult{})
			continue
		}
		results = append(results, search.SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
		})
	}

	return &search.SearchResponse{
		Query:   query,
		Results: results,
	}
}
