// Package notify delivers out-of-band operator alerts. The pipeline treats a
// nil notifier as "notifications disabled" so alert failures never affect a
// run's outcome.
package notify

import (
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two Telegram messages to the same chat to avoid
// 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

// TelegramNotifier sends operator alerts (guardrail firings, activation gate
// rejections) to a Telegram chat through an async queue.
type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	mu       sync.Mutex
	lastSend time.Time

	queue chan string
	done  chan struct{}
}

// NewTelegramNotifier creates a Telegram notifier. Returns nil when the bot
// cannot be created or reached; callers must treat nil as disabled.
func NewTelegramNotifier(token string, chatID int64) *TelegramNotifier {
	if token == "" || chatID == 0 {
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("Failed to create telegram bot", "error", err)
		return nil
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		slog.Error("Failed to get bot info", "error", err)
		return nil
	}

	n := &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		queue:  make(chan string, 100),
		done:   make(chan struct{}),
	}
	go n.messageSender()

	slog.Info("Telegram notifier initialized", "chat_id", chatID)
	return n
}

// Notify queues one alert, non-blocking. A full queue drops the message with
// a warning instead of stalling the pipeline.
func (n *TelegramNotifier) Notify(text string) {
	if n == nil || n.bot == nil {
		return
	}
	select {
	case n.queue <- text:
	default:
		slog.Warn("Telegram message queue is full, dropping alert", "preview", truncate(text, 50))
	}
}

// Stop drains and sends all queued alerts, then stops the sender.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	close(n.queue)
	<-n.done
}

// messageSender runs in background and sends queued messages with proper
// intervals between them.
func (n *TelegramNotifier) messageSender() {
	defer close(n.done)
	for text := range n.queue {
		n.send(text)
	}
}

func (n *TelegramNotifier) send(text string) {
	n.mu.Lock()
	if elapsed := time.Since(n.lastSend); elapsed < telegramSendInterval {
		time.Sleep(telegramSendInterval - elapsed)
	}
	n.lastSend = time.Now()
	n.mu.Unlock()

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		slog.Error("Telegram send: failed", "error", err, "preview", truncate(text, 50))
		return
	}
	slog.Info("Telegram send: success", "queue_length", len(n.queue))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
