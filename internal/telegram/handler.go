package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
	"github.com/kitbuilder587/gcsearch-plugin/internal/plugin"
	"github.com/kitbuilder587/gcsearch-plugin/internal/search"
	"github.com/kitbuilder587/gcsearch-plugin/internal/service"
)

const source = "telegram"

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

// UserID - ключ пользователя телеграма в хранилище кредов и лимитере
func UserID(telegramID int64) string {
	return "tg:" + strconv.FormatInt(telegramID, 10)
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	command, args := ParseCommand(msg.Text)

	switch command {
	case "":
		h.handleSearch(ctx, msg, args, 0)
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "setkey":
		h.handleSetKey(ctx, msg, args)
	case "removekey":
		h.handleRemoveKey(ctx, msg)
	case "search":
		h.handleSearch(ctx, msg, args, 0)
	case "top":
		n, query, err := ParseTopArgs(args)
		if err != nil {
			h.bot.Send(msg.Chat.ID, "Использование: /top N запрос\nПример: /top 3 東京 天気")
			return
		}
		h.handleSearch(ctx, msg, query, n)
	default:
		h.bot.Send(msg.Chat.ID, "Неизвестная команда. Используйте /help для справки.")
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	response := "Добро пожаловать! Я ищу в интернете через Google Custom Search.\n\n" +
		"Отправьте запрос обычным сообщением или используйте /help для просмотра команд."

	if _, err := h.bot.credentials.Resolve(ctx, UserID(msg.From.ID)); errors.Is(err, domain.ErrCredentialsNotFound) {
		response += "\n\nСначала укажите свой ключ: /setkey API_KEY ENGINE_ID"
	}

	h.bot.Send(msg.Chat.ID, response)
}

func (h *Handler) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	helpText := `<b>Доступные команды:</b>

/start - Начало работы
/help - Показать эту справку
/setkey API_KEY ENGINE_ID - Сохранить свой ключ Google (проверяется пробным запросом)
/removekey - Удалить сохраненный ключ
/search запрос - Поиск, 10 результатов
/top N запрос - Поиск, N результатов

<b>Как использовать:</b>
Просто отправьте текст, и я верну первые 10 результатов поиска.

<b>Примеры:</b>
• 東京 天気
• /top 3 golang context`

	h.bot.Send(msg.Chat.ID, helpText)
}

func (h *Handler) handleSetKey(ctx context.Context, msg *tgbotapi.Message, args string) {
	creds, err := ParseSetKeyArgs(args)
	if err != nil {
		h.bot.Send(msg.Chat.ID, "Использование: /setkey API_KEY ENGINE_ID")
		return
	}

	// ключ не должен висеть в истории чата
	if err := h.bot.DeleteMessage(msg.Chat.ID, msg.MessageID); err != nil {
		h.bot.logger.Warn("failed to delete message with api key", zap.Error(err))
	}

	h.bot.SendTyping(msg.Chat.ID)

	if err := h.bot.credentials.Save(ctx, UserID(msg.From.ID), creds); err != nil {
		h.bot.logger.Warn("failed to save credentials",
			zap.Error(err),
			zap.Int64("user_id", msg.From.ID),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatCredentialsSaved(creds))
}

func (h *Handler) handleRemoveKey(ctx context.Context, msg *tgbotapi.Message) {
	if err := h.bot.credentials.Remove(ctx, UserID(msg.From.ID)); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, "Ключ удален.")
}

// handleSearch ищет query; numResults == 0 - значение по умолчанию из манифеста.
func (h *Handler) handleSearch(ctx context.Context, msg *tgbotapi.Message, query string, numResults int) {
	if query == "" {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(domain.ErrEmptyQuery))
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	params := map[string]interface{}{plugin.ParamQuery: query}
	if numResults > 0 {
		params[plugin.ParamNumResults] = numResults
	}

	res, err := h.bot.search.Invoke(ctx, service.InvokeRequest{
		Source: source,
		UserID: UserID(msg.From.ID),
		Params: params,
	})
	if err != nil {
		h.bot.logger.Error("search failed",
			zap.Error(err),
			zap.Int64("user_id", msg.From.ID),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	for _, m := range res.Messages {
		env, err := domain.DecodeEnvelope(m.Message)
		if err != nil {
			h.bot.logger.Error("failed to decode tool output", zap.Error(err))
			h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
			return
		}

		for _, part := range SplitMessage(FormatSearchResults(env), MaxMessageLength) {
			if err := h.bot.Send(msg.Chat.ID, part); err != nil {
				h.bot.logger.Error("failed to send message", zap.Error(err))
			}
		}
	}
}

func mapErrorToMessage(err error) string {
	if domain.IsCredentialValidationError(err) {
		return fmt.Sprintf("Ключ не прошел проверку: %s", html.EscapeString(err.Error()))
	}

	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		wait := rl.RetryAfter(time.Now())
		return fmt.Sprintf("Слишком много запросов. Следующий запрос можно отправить через %d сек.", int(wait/time.Second))
	}

	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "Слишком много запросов. Пожалуйста, подождите минуту."
	case errors.Is(err, domain.ErrCredentialsNotFound):
		return "Ключ Google не настроен. Используйте /setkey API_KEY ENGINE_ID."
	case errors.Is(err, domain.ErrEmptyQuery):
		return "Пустой запрос. Введите ваш вопрос."
	case errors.Is(err, domain.ErrInvalidNumResults):
		return "Количество результатов должно быть положительным числом."
	case errors.Is(err, search.ErrUnauthorized):
		return "Google отклонил ключ. Обновите его через /setkey."
	case errors.Is(err, search.ErrRateLimit):
		return "Исчерпана квота Google API. Попробуйте позже."
	case errors.Is(err, search.ErrInvalidRequest):
		return "Google отклонил запрос. Для /top допустимо не больше 10 результатов."
	default:
		return "Произошла ошибка. Попробуйте позже."
	}
}
