package telegram

import (
	"errors"
	"strconv"
	"strings"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

var (
	ErrTopUsage    = errors.New("usage: /top N query")
	ErrSetKeyUsage = errors.New("usage: /setkey API_KEY ENGINE_ID")
)

// ParseCommand отделяет команду от аргументов.
// "/Search@gcsearch_bot  go   lang" -> ("search", "go lang").
// Для обычного текста command пустая, args - весь текст.
func ParseCommand(text string) (command, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", normalizeSpaces(text)
	}

	parts := strings.SplitN(text, " ", 2)
	command = strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}

	if len(parts) > 1 {
		args = normalizeSpaces(parts[1])
	}
	return command, args
}

// ParseTopArgs разбирает аргументы /top: число результатов и запрос.
func ParseTopArgs(args string) (int, string, error) {
	parts := strings.SplitN(args, " ", 2)
	if len(parts) != 2 {
		return 0, "", ErrTopUsage
	}

	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 1 {
		return 0, "", ErrTopUsage
	}

	return n, parts[1], nil
}

func ParseSetKeyArgs(args string) (domain.Credentials, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return domain.Credentials{}, ErrSetKeyUsage
	}
	return domain.Credentials{APIKey: fields[0], EngineID: fields[1]}, nil
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
