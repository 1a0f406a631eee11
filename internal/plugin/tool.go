package plugin

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
	"github.com/kitbuilder587/gcsearch-plugin/internal/search"
)

const ToolName = "google_custom_search"

type ToolConfig struct {
	// Language уходит в lr, по умолчанию lang_ja
	Language string
}

// Runtime - то, что хост привязывает к инструменту перед вызовом.
type Runtime struct {
	Credentials map[string]string
}

type Tool struct {
	manifest ToolManifest
	factory  search.Factory
	language string
	runtime  Runtime
	logger   *zap.Logger
}

func NewTool(manifest ToolManifest, factory search.Factory, cfg ToolConfig, logger *zap.Logger) *Tool {
	if cfg.Language == "" {
		cfg.Language = search.DefaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tool{
		manifest: manifest,
		factory:  factory,
		language: cfg.Language,
		logger:   logger,
	}
}

func (t *Tool) Name() string {
	return t.manifest.Name
}

func (t *Tool) Manifest() ToolManifest {
	return t.manifest
}

// Fork возвращает копию инструмента с другим runtime, исходный не меняется.
func (t *Tool) Fork(rt Runtime) *Tool {
	forked := *t
	forked.runtime = rt
	return &forked
}

// Query разбирает параметры хоста так же, как Invoke, но без вызова API.
func (t *Tool) Query(params map[string]interface{}) (domain.SearchQuery, error) {
	return parseQuery(params, defaultNumResults(t.manifest))
}

// Invoke is the host entry point. It always yields exactly one text message on
// success; errors from the search API are returned as they came.
func (t *Tool) Invoke(ctx context.Context, userID string, params map[string]interface{}) ([]ToolInvokeMessage, error) {
	query, err := t.Query(params)
	if err != nil {
		return nil, err
	}

	creds, err := domain.CredentialsFromMap(t.runtime.Credentials)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("invoking tool",
		zap.String("tool", t.manifest.Name),
		zap.String("user_id", userID),
		zap.Int("num_results", query.NumResults),
	)

	text, err := t.Run(ctx, creds, query)
	if err != nil {
		return nil, err
	}

	return []ToolInvokeMessage{NewTextMessage(text)}, nil
}

// Run builds a client for creds, performs one search and encodes the envelope.
func (t *Tool) Run(ctx context.Context, creds domain.Credentials, query domain.SearchQuery) (string, error) {
	if err := query.Validate(); err != nil {
		return "", err
	}
	query = query.Normalize()

	client, err := t.factory(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("create search client: %w", err)
	}

	resp, err := client.Search(ctx, search.SearchRequest{
		Query:      query.Query,
		NumResults: query.NumResults,
		Language:   t.language,
	})
	if err != nil {
		return "", err
	}

	items := make([]domain.SearchResultItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, domain.SearchResultItem{
			Title:   r.Title,
			Snippet: r.Snippet,
			URL:     r.URL,
		})
	}

	return domain.NewEnvelope(query.Query, items).Encode()
}
