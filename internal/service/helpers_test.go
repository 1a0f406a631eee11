package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kitbuilder587/gcsearch-plugin/internal/metrics"
	"github.com/kitbuilder587/gcsearch-plugin/internal/plugin"
	"github.com/kitbuilder587/gcsearch-plugin/internal/search/mock"
)

func newTestProvider(t *testing.T, client *mock.Client) *plugin.Provider {
	t.Helper()
	p, err := plugin.New(client.Factory(), plugin.ToolConfig{}, zap.NewNop())
	require.NoError(t, err)
	return p
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

type countingValidator struct {
	calls int
	err   error
}

func (v *countingValidator) ValidateCredentials(ctx context.Context, credentials map[string]string) error {
	v.calls++
	return v.err
}
