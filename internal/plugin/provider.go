package plugin

import (
	"context"

	"go.uber.org/zap"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
	"github.com/kitbuilder587/gcsearch-plugin/internal/search"
)

// параметры пробного запроса при проверке кредов
const (
	checkQuery      = "test"
	checkNumResults = 1
)

type Provider struct {
	manifest *Manifest
	tool     *Tool
	logger   *zap.Logger
}

func NewProvider(manifest *Manifest, tool *Tool, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		manifest: manifest,
		tool:     tool,
		logger:   logger,
	}
}

// New собирает провайдер и его единственный инструмент из встроенного манифеста.
func New(factory search.Factory, cfg ToolConfig, logger *zap.Logger) (*Provider, error) {
	manifest, err := LoadManifest()
	if err != nil {
		return nil, err
	}
	tm, err := manifest.Tool(ToolName)
	if err != nil {
		return nil, err
	}
	return NewProvider(manifest, NewTool(tm, factory, cfg, logger), logger), nil
}

func (p *Provider) Name() string {
	return p.manifest.Identity.Name
}

func (p *Provider) Manifest() *Manifest {
	return p.manifest
}

func (p *Provider) Tool() *Tool {
	return p.tool
}

// ValidateCredentials runs one live check search (it costs a quota unit).
// Every failure, whatever its cause, comes back as *domain.CredentialValidationError.
func (p *Provider) ValidateCredentials(ctx context.Context, credentials map[string]string) error {
	_, err := p.tool.Fork(Runtime{Credentials: credentials}).Invoke(ctx, "", map[string]interface{}{
		ParamQuery:      checkQuery,
		ParamNumResults: checkNumResults,
	})
	if err != nil {
		p.logger.Info("credential validation failed",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		return domain.NewCredentialValidationError(err)
	}

	return nil
}
