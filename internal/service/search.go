package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/gcsearch-plugin/internal/cache/memory"
	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
	"github.com/kitbuilder587/gcsearch-plugin/internal/metrics"
	"github.com/kitbuilder587/gcsearch-plugin/internal/plugin"
	"github.com/kitbuilder587/gcsearch-plugin/internal/ratelimit"
)

type InvokeRequest struct {
	// Source - откуда пришел вызов (http, telegram), только для метрик
	Source string
	UserID string
	// Credentials от хоста; если nil, берем сохраненные через CredentialService
	Credentials map[string]string
	Params      map[string]interface{}
}

type InvokeResult struct {
	Messages []plugin.ToolInvokeMessage
	Cached   bool
	// RemainingRequests - сколько вызовов осталось в окне лимитера, -1 если лимитера нет
	RemainingRequests int
}

type SearchService interface {
	Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error)
}

type SearchServiceDeps struct {
	Tool        *plugin.Tool
	Credentials CredentialService
	Logger      *zap.Logger
	Metrics     *metrics.Metrics

	// опциональные
	RateLimiter *ratelimit.Limiter
	Cache       *memory.Cache[string]
	CacheTTL    time.Duration
}

type searchService struct {
	tool        *plugin.Tool
	credentials CredentialService
	logger      *zap.Logger
	metrics     *metrics.Metrics
	limiter     *ratelimit.Limiter
	cache       *memory.Cache[string]
	cacheTTL    time.Duration
}

func NewSearchService(deps SearchServiceDeps) SearchService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &searchService{
		tool:        deps.Tool,
		credentials: deps.Credentials,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		limiter:     deps.RateLimiter,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
	}
}

// Invoke прогоняет вызов через лимитер и кеш и отдает его инструменту.
// Ошибки инструмента возвращаются без изменений.
func (s *searchService) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	start := time.Now()

	if s.limiter != nil && !s.limiter.Allow(req.UserID) {
		resetAt := s.limiter.ResetTime(req.UserID)
		s.logger.Warn("rate limit exceeded",
			zap.String("user_id", req.UserID),
			zap.Time("reset_at", resetAt),
		)
		if s.metrics != nil {
			s.metrics.RecordRateLimitHit(req.Source)
		}
		return nil, &domain.RateLimitError{ResetAt: resetAt}
	}

	if s.metrics != nil {
		s.metrics.IncInFlight()
		defer s.metrics.DecInFlight()
	}

	result, err := s.invoke(ctx, req)

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case result.Cached:
		status = "cached"
	}
	if s.metrics != nil {
		s.metrics.RecordInvocation(req.Source, status, time.Since(start))
	}

	if err != nil {
		s.logger.Error("tool invocation failed",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("source", req.Source),
		)
		return nil, err
	}

	result.RemainingRequests = -1
	if s.limiter != nil {
		result.RemainingRequests = s.limiter.RemainingRequests(req.UserID)
	}

	s.logger.Info("tool invoked",
		zap.String("user_id", req.UserID),
		zap.String("source", req.Source),
		zap.Bool("cached", result.Cached),
		zap.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

func (s *searchService) invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	creds, err := s.resolveCredentials(ctx, req)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if s.cacheEnabled() {
		// кривые параметры не кешируем, Invoke сам вернет ошибку
		if q, err := s.tool.Query(req.Params); err == nil {
			cacheKey = q.CacheKey(creds)
			if text, ok := s.cache.Get(cacheKey); ok {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
				}
				return &InvokeResult{
					Messages: []plugin.ToolInvokeMessage{plugin.NewTextMessage(text)},
					Cached:   true,
				}, nil
			}
			if s.metrics != nil {
				s.metrics.RecordCacheMiss()
			}
		}
	}

	msgs, err := s.tool.Fork(plugin.Runtime{Credentials: creds.ToMap()}).Invoke(ctx, req.UserID, req.Params)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" && len(msgs) == 1 {
		s.cache.Set(cacheKey, msgs[0].Message, s.cacheTTL)
	}

	return &InvokeResult{Messages: msgs}, nil
}

func (s *searchService) resolveCredentials(ctx context.Context, req InvokeRequest) (domain.Credentials, error) {
	if req.Credentials != nil {
		return domain.CredentialsFromMap(req.Credentials)
	}
	return s.credentials.Resolve(ctx, req.UserID)
}

func (s *searchService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}
