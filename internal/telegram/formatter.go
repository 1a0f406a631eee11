package telegram

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

// MaxMessageLength - лимит телеграма на одно сообщение
const MaxMessageLength = 4096

func FormatSearchResults(env domain.SearchResponseEnvelope) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>: <i>%s</i>\n",
		html.EscapeString(env.SearchProvider),
		html.EscapeString(env.Query),
	))

	if len(env.Results) == 0 {
		sb.WriteString("\nНичего не найдено.")
		return sb.String()
	}

	for i, r := range env.Results {
		title := r.Title
		if title == "" {
			title = truncateURL(r.URL, 50)
		}

		sb.WriteString(fmt.Sprintf("\n%d. <a href=\"%s\">%s</a>\n",
			i+1,
			html.EscapeString(r.URL),
			html.EscapeString(title),
		))
		if r.Snippet != "" {
			sb.WriteString(html.EscapeString(r.Snippet))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\nВсего: %d", len(env.Results)))
	return sb.String()
}

func FormatCredentialsSaved(creds domain.Credentials) string {
	return fmt.Sprintf("Ключ сохранен.\nAPI key: <code>%s</code>\nEngine ID: <code>%s</code>",
		html.EscapeString(creds.MaskedAPIKey()),
		html.EscapeString(creds.EngineID),
	)
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}
		// японский текст часто без пробелов, не режем руну пополам
		for splitPoint > 1 && !utf8.RuneStart(text[splitPoint]) {
			splitPoint--
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// внутри тега - ищем конец
	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				for j := i + 1; j < len(text) && j < i+50; j++ {
					if text[j] == '\n' || text[j] == ' ' {
						return j + 1
					}
				}
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}
