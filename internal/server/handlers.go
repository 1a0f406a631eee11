package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
	"github.com/kitbuilder587/gcsearch-plugin/internal/plugin"
	"github.com/kitbuilder587/gcsearch-plugin/internal/search"
	"github.com/kitbuilder587/gcsearch-plugin/internal/service"
)

const maxBodyBytes = 1 << 20

// значения кредов берем любыми: кривой тип - это ошибка валидации, а не тела запроса
type validateRequest struct {
	Credentials map[string]interface{} `json:"credentials"`
}

type invokeRequest struct {
	UserID         string                 `json:"user_id"`
	Credentials    map[string]interface{} `json:"credentials,omitempty"`
	ToolParameters map[string]interface{} `json:"tool_parameters"`
}

type invokeResponse struct {
	Messages []plugin.ToolInvokeMessage `json:"messages"`
}

type saveCredentialsRequest struct {
	APIKey   string `json:"api_key"`
	EngineID string `json:"engine_id"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.provider.Manifest())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if name := chi.URLParam(r, "provider"); name != s.provider.Name() {
		writeError(w, http.StatusNotFound, "not_found", "unknown provider "+name)
		return
	}

	var req validateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := s.credentials.Validate(r.Context(), credentialStrings(req.Credentials)); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if name := chi.URLParam(r, "tool"); name != s.provider.Tool().Name() {
		writeError(w, http.StatusNotFound, "not_found", "unknown tool "+name)
		return
	}

	var req invokeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	res, err := s.search.Invoke(r.Context(), service.InvokeRequest{
		Source:      "http",
		UserID:      req.UserID,
		Credentials: credentialStrings(req.Credentials),
		Params:      req.ToolParameters,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if res.RemainingRequests >= 0 {
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.RemainingRequests))
	}

	writeJSON(w, http.StatusOK, invokeResponse{Messages: res.Messages})
}

func (s *Server) handleSaveCredentials(w http.ResponseWriter, r *http.Request) {
	var req saveCredentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	creds := domain.Credentials{APIKey: req.APIKey, EngineID: req.EngineID}
	if err := s.credentials.Save(r.Context(), chi.URLParam(r, "user_id"), creds); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveCredentials(w http.ResponseWriter, r *http.Request) {
	if err := s.credentials.Remove(r.Context(), chi.URLParam(r, "user_id")); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		w.Header().Set("Retry-After", strconv.Itoa(int(rl.RetryAfter(time.Now())/time.Second)))
		w.Header().Set("X-RateLimit-Remaining", "0")
	}

	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, status, code, err.Error())
}

// classify переводит ошибки сервисов в HTTP статус и код для тела ответа.
func classify(err error) (int, string) {
	if domain.IsCredentialValidationError(err) {
		return http.StatusBadRequest, "credential_validation"
	}

	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrInvalidNumResults),
		errors.Is(err, domain.ErrMissingAPIKey),
		errors.Is(err, domain.ErrMissingEngineID),
		errors.Is(err, domain.ErrEmptyUserID):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrCredentialsNotFound):
		return http.StatusNotFound, "credentials_not_found"
	case errors.Is(err, search.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, search.ErrRateLimit):
		return http.StatusTooManyRequests, "upstream_rate_limited"
	case errors.Is(err, search.ErrInvalidRequest):
		return http.StatusBadRequest, "upstream_invalid_request"
	default:
		return http.StatusBadGateway, "search_failed"
	}
}

// credentialStrings приводит креды хоста к строкам. nil означает "кредов нет",
// тогда сервис возьмет сохраненные.
func credentialStrings(raw map[string]interface{}) map[string]string {
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				out[k] = fmt.Sprint(val)
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	// num_results приходит как json.Number, parseQuery его понимает
	dec.UseNumber()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
