package plugin

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

const (
	ParamQuery      = "query"
	ParamNumResults = "num_results"
)

// parseQuery собирает SearchQuery из параметров хоста. num_results может прийти
// числом из JSON, int-ом из кода или строкой из формы.
func parseQuery(params map[string]interface{}, defaultNum int) (domain.SearchQuery, error) {
	raw, ok := params[ParamQuery]
	if !ok || raw == nil {
		return domain.SearchQuery{}, domain.ErrEmptyQuery
	}
	query, ok := raw.(string)
	if !ok {
		return domain.SearchQuery{}, fmt.Errorf("%w: query must be a string, got %T", domain.ErrEmptyQuery, raw)
	}

	q := domain.SearchQuery{Query: query, NumResults: defaultNum}
	if v, ok := params[ParamNumResults]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return domain.SearchQuery{}, err
		}
		if n <= 0 {
			return domain.SearchQuery{}, fmt.Errorf("%w: %d", domain.ErrInvalidNumResults, n)
		}
		q.NumResults = n
	}

	if err := q.Validate(); err != nil {
		return domain.SearchQuery{}, err
	}
	return q.Normalize(), nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", domain.ErrInvalidNumResults, n.String())
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, fmt.Errorf("%w: empty string", domain.ErrInvalidNumResults)
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", domain.ErrInvalidNumResults, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", domain.ErrInvalidNumResults, v)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidNumResults, f)
	}
	return int(f), nil
}

func defaultNumResults(t ToolManifest) int {
	p, ok := t.Parameter(ParamNumResults)
	if !ok || p.Default == nil {
		return domain.DefaultNumResults
	}
	n, err := toInt(p.Default)
	if err != nil || n <= 0 {
		return domain.DefaultNumResults
	}
	return n
}
