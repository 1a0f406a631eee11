package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const SearchProviderName = "Google Custom Search"

type SearchResultItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// SearchResponseEnvelope is the payload of the tool's single text message.
// Field order here is the key order on the wire.
type SearchResponseEnvelope struct {
	SearchProvider string             `json:"search_provider"`
	Query          string             `json:"query"`
	Results        []SearchResultItem `json:"results"`
}

func NewEnvelope(query string, results []SearchResultItem) SearchResponseEnvelope {
	if results == nil {
		results = []SearchResultItem{}
	}
	return SearchResponseEnvelope{
		SearchProvider: SearchProviderName,
		Query:          query,
		Results:        results,
	}
}

// Encode пишет JSON без экранирования: кириллица, японский и <>& остаются как есть.
func (e SearchResponseEnvelope) Encode() (string, error) {
	if e.Results == nil {
		e.Results = []SearchResultItem{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}

	// Encoder всегда добавляет перевод строки
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return string(unescapeLineSeparators(out)), nil
}

// unescapeLineSeparators возвращает U+2028 и U+2029 как есть: encoding/json
// экранирует их всегда, даже без SetEscapeHTML.
// Идем по escape-последовательностям парами, поэтому "\\u2028" из текста
// пользователя (экранированный обратный слэш) не трогаем.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}

		if b[i+1] == 'u' && i+6 <= len(b) {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}

		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

func DecodeEnvelope(text string) (SearchResponseEnvelope, error) {
	var e SearchResponseEnvelope
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return SearchResponseEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return e, nil
}
