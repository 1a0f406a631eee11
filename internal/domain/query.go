package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const DefaultNumResults = 10

type SearchQuery struct {
	Query      string
	NumResults int
}

func NewSearchQuery(query string, numResults int) SearchQuery {
	return SearchQuery{Query: query, NumResults: numResults}.Normalize()
}

// Normalize подставляет дефолтное количество результатов.
// Сам запрос не трогаем: он эхом уходит в ответ как есть.
func (q SearchQuery) Normalize() SearchQuery {
	if q.NumResults <= 0 {
		q.NumResults = DefaultNumResults
	}
	return q
}

func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// CacheKey - ключ для кеша ответов. API-ключ входит только хешем:
// разные ключи на одном engine id не видят ответов друг друга.
func (q SearchQuery) CacheKey(creds Credentials) string {
	sum := sha256.Sum256([]byte(creds.APIKey))
	return hex.EncodeToString(sum[:8]) + "|" + creds.EngineID + "|" + strconv.Itoa(q.NumResults) + "|" + q.Query
}
