package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"multibot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	telegramMaxMsgLen      = 4000
	telegramMaxSendRetries = 3
)

// Telegram implements domain.Channel for the Telegram Bot API.
type Telegram struct {
	token     string
	allowFrom []int64 // Allowed user IDs (empty = allow all)
	parseMode string

	bot    *tgbotapi.BotAPI
	bus    domain.MessageBus
	logger *slog.Logger
}

type TelegramConfig struct {
	Token     string
	AllowFrom []string // User IDs as strings
	ParseMode string
	Logger    *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	var allowed []int64
	for _, s := range cfg.AllowFrom {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			allowed = append(allowed, id)
		}
	}
	return &Telegram{
		token:     cfg.Token,
		allowFrom: allowed,
		parseMode: cfg.ParseMode,
		logger:    cfg.Logger,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Start connects to Telegram and begins polling for updates.
func (t *Telegram) Start(ctx context.Context, bus domain.MessageBus) error {
	t.bus = bus

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)

	bus.OnOutbound("telegram", func(msg domain.OutboundMessage) {
		chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
		if err != nil {
			t.logger.Error("invalid chat ID for telegram outbound", "chatID", msg.ChatID, "err", err)
			return
		}
		t.deliver(chatID, msg)
	})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	t.logger.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram channel stopping")
			bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(update)
		}
	}
}

// Stop shuts down the Telegram bot.
// Note: StopReceivingUpdates is already called when ctx is cancelled in Start().
// Calling it twice panics, so Stop() is a no-op.
func (t *Telegram) Stop() error {
	return nil
}

func (t *Telegram) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !t.isAllowed(userID) {
		t.logger.Warn("unauthorized telegram user",
			"user_id", userID,
			"username", update.Message.From.UserName,
		)
		t.sendText(chatID, "⛔ Ваш ID не в списке разрешённых.", nil)
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	t.logger.Info("telegram message received",
		"user_id", userID,
		"chat_id", chatID,
		"text_len", len(text),
	)

	typing := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = t.bot.Send(typing)

	// Commands and keyboard button presses ride the same path: the
	// dispatcher owns all routing, the channel only transports text.
	t.bus.Publish(domain.InboundMessage{
		Channel:   "telegram",
		ChatID:    strconv.FormatInt(chatID, 10),
		SenderID:  strconv.FormatInt(userID, 10),
		Content:   text,
		Timestamp: time.Unix(int64(update.Message.Date), 0),
	})
}

func (t *Telegram) isAllowed(userID int64) bool {
	if len(t.allowFrom) == 0 {
		return true // Empty list = allow all
	}
	for _, id := range t.allowFrom {
		if id == userID {
			return true
		}
	}
	return false
}

// deliver renders each content unit in order. The reply keyboard is attached
// to the last unit so it arrives together with the final message.
func (t *Telegram) deliver(chatID int64, msg domain.OutboundMessage) {
	markup := replyMarkup(msg.Keyboard)
	for i, unit := range msg.Units {
		var m interface{}
		if i == len(msg.Units)-1 {
			m = markup
		}
		switch unit.Kind {
		case domain.UnitPhoto:
			t.sendPhoto(chatID, unit, m)
		default:
			t.sendText(chatID, unit.Body, m)
		}
	}
}

func replyMarkup(kb *domain.Keyboard) interface{} {
	if kb == nil || len(kb.Rows) == 0 {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, labels := range kb.Rows {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// sendPhoto posts the image by URL with its caption. If Telegram rejects the
// URL the unit degrades to a text message so the chat still gets an answer.
func (t *Telegram) sendPhoto(chatID int64, unit domain.ContentUnit, markup interface{}) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(unit.ImageURL))
	photo.Caption = unit.Caption
	if markup != nil {
		photo.ReplyMarkup = markup
	}
	_, err := t.bot.Send(photo)
	if err == nil {
		return
	}
	t.logger.Warn("telegram photo send failed, falling back to text",
		"err", err, "url", unit.ImageURL,
	)
	fallback := unit.Caption
	if fallback != "" {
		fallback += "\n"
	}
	fallback += unit.ImageURL
	t.sendText(chatID, fallback, markup)
}

// sendText splits long text on newline boundaries; Telegram caps a single
// message at 4096 chars.
func (t *Telegram) sendText(chatID int64, text string, markup interface{}) {
	const maxLen = telegramMaxMsgLen
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxLen {
			cutAt := strings.LastIndex(chunk[:maxLen], "\n")
			if cutAt < maxLen/2 {
				cutAt = maxLen
			}
			chunk = text[:cutAt]
			text = text[cutAt:]
		} else {
			text = ""
		}

		// Markup goes out with the final chunk only.
		var m interface{}
		if text == "" {
			m = markup
		}
		t.sendChunk(chatID, chunk, m)
	}
}

// sendChunk sends a single message chunk with retry and rate limit handling.
// Strategy: try the configured parse mode first, fall back to plain text on a
// parse error, back off on 429.
func (t *Telegram) sendChunk(chatID int64, text string, markup interface{}) {
	const maxRetries = telegramMaxSendRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		msg := tgbotapi.NewMessage(chatID, text)
		if attempt == 0 && t.parseMode != "" {
			msg.ParseMode = t.parseMode
		}
		if markup != nil {
			msg.ReplyMarkup = markup
		}

		_, err := t.bot.Send(msg)
		if err == nil {
			return
		}

		errStr := err.Error()

		// Telegram rate limiting (HTTP 429).
		if strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "429") {
			retryAfter := time.Duration(attempt+1) * 3 * time.Second
			t.logger.Warn("telegram rate limited, backing off",
				"retry_after", retryAfter, "attempt", attempt+1,
			)
			time.Sleep(retryAfter)
			continue
		}

		// Parse error on first attempt — immediately retry as plain text.
		if attempt == 0 && msg.ParseMode != "" &&
			strings.Contains(errStr, "can't parse entities") {
			t.logger.Warn("telegram parse error, retrying as plain text",
				"err", err, "parseMode", t.parseMode,
			)
			plainMsg := tgbotapi.NewMessage(chatID, text)
			if markup != nil {
				plainMsg.ReplyMarkup = markup
			}
			if _, err2 := t.bot.Send(plainMsg); err2 == nil {
				return
			}
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt+1) * time.Second
			t.logger.Warn("telegram send error, retrying", "err", err, "backoff", backoff)
			time.Sleep(backoff)
			continue
		}

		t.logger.Error("telegram send failed after retries", "err", err, "attempts", maxRetries+1)
	}
}
