package telegram

import (
	"context"

	"go.uber.org/zap"
)

// UI is the user-facing capability of the bot platform. Callers never
// check for bot availability themselves; they receive either the real
// implementation or the no-op one, selected once at startup.
type UI interface {
	// Available reports whether messages actually reach users.
	Available() bool

	// Notify sends a plain text message to a chat.
	Notify(ctx context.Context, chatID int64, text string) error

	// NotifyWithWebApp sends a message with a button opening the web app.
	NotifyWithWebApp(ctx context.Context, chatID int64, text, buttonText, webAppURL string) error
}

// Setup selects the UI capability: the real bot when a client is
// configured and reachable, the silent fallback otherwise. The choice is
// made exactly once.
func Setup(ctx context.Context, client *Client, logger *zap.Logger) UI {
	if client == nil {
		logger.Warn("telegram bot not configured, user notifications disabled")
		return &noopUI{logger: logger}
	}
	if err := client.Ping(ctx); err != nil {
		logger.Warn("telegram bot unreachable, user notifications disabled", zap.Error(err))
		return &noopUI{logger: logger}
	}
	logger.Info("telegram bot ready", zap.String("username", client.Username()))
	return &hostUI{client: client}
}

type hostUI struct {
	client *Client
}

func (u *hostUI) Available() bool { return true }

func (u *hostUI) Notify(ctx context.Context, chatID int64, text string) error {
	return u.client.SendMessage(ctx, chatID, text)
}

func (u *hostUI) NotifyWithWebApp(ctx context.Context, chatID int64, text, buttonText, webAppURL string) error {
	return u.client.SendMessageWithMarkup(ctx, chatID, text, WebAppKeyboard(buttonText, webAppURL))
}

// noopUI drops all notifications. Used when the bot is not configured,
// so the rest of the system runs unchanged.
type noopUI struct {
	logger *zap.Logger
}

func (u *noopUI) Available() bool { return false }

func (u *noopUI) Notify(_ context.Context, chatID int64, text string) error {
	u.logger.Debug("notification dropped",
		zap.Int64("chat_id", chatID),
		zap.String("text", text),
	)
	return nil
}

func (u *noopUI) NotifyWithWebApp(ctx context.Context, chatID int64, text, _, _ string) error {
	return u.Notify(ctx, chatID, text)
}
