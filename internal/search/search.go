package search

import (
	"context"
	"errors"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

var (
	ErrUnauthorized   = errors.New("invalid API key")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrInvalidRequest = errors.New("invalid request parameters")
	ErrSearchFailed   = errors.New("search request failed")
)

// DefaultLanguage - выдача ограничена японским языком
const DefaultLanguage = "lang_ja"

type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

type SearchRequest struct {
	Query      string
	NumResults int
	Language   string
}

type SearchResponse struct {
	Query   string
	Results []SearchResult
}

type SearchResult struct {
	Title   string
	Snippet string
	URL     string
}

// Factory собирает клиент под конкретные креды. Клиенты не переиспользуются
// между вызовами: каждый вызов инструмента получает свой.
type Factory func(ctx context.Context, creds domain.Credentials) (Searcher, error)
