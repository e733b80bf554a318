package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/payment/provider"
	"github.com/frozenfood/server/internal/shared/config"
	"github.com/frozenfood/server/internal/utils/metrics"
)

// Client wraps the Telegram Bot API with a circuit breaker and metrics.
type Client struct {
	api     *tgbotapi.BotAPI
	breaker *gobreaker.CircuitBreaker[tgbotapi.Message]
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewClient creates a new Telegram client.
func NewClient(cfg *config.TelegramConfig, m *metrics.Metrics, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	settings := gobreaker.Settings{
		Name:    "telegram-bot-api",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Client{
		api:     api,
		breaker: gobreaker.NewCircuitBreaker[tgbotapi.Message](settings),
		metrics: m,
		logger:  logger.With(zap.String("component", "telegram")),
	}, nil
}

// Username returns the bot's username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// UpdatesChan returns a channel of bot updates via long polling.
func (c *Client) UpdatesChan(pollTimeout time.Duration) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(pollTimeout.Seconds())
	u.AllowedUpdates = []string{"message", "callback_query", "pre_checkout_query"}
	return c.api.GetUpdatesChan(u)
}

// StopPolling stops the long-polling update loop.
func (c *Client) StopPolling() {
	c.api.StopReceivingUpdates()
}

func (c *Client) send(method string, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	start := time.Now()
	sent, err := c.breaker.Execute(func() (tgbotapi.Message, error) {
		return c.api.Send(msg)
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.metrics != nil {
		c.metrics.ObserveBotAPICall(method, outcome, time.Since(start))
	}
	return sent, err
}

// SendMessage sends a plain text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.send("sendMessage", msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendMessageWithMarkup sends a message with a reply markup. The markup
// is any JSON-marshalable inline keyboard, including WebAppKeyboardMarkup.
func (c *Client) SendMessageWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := c.send("sendMessage", msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendInvoice sends a Telegram Payments invoice. Implements the payment
// provider Invoicer interface.
func (c *Client) SendInvoice(ctx context.Context, inv provider.Invoice) error {
	prices := make([]tgbotapi.LabeledPrice, 0, len(inv.Prices))
	for _, p := range inv.Prices {
		prices = append(prices, tgbotapi.LabeledPrice{Label: p.Label, Amount: int(p.Amount)})
	}

	invoice := tgbotapi.NewInvoice(
		inv.ChatID,
		inv.Title,
		inv.Description,
		inv.Payload,
		inv.ProviderToken,
		"", // startParameter
		inv.Currency,
		prices,
	)
	invoice.SuggestedTipAmounts = []int{}

	if _, err := c.send("sendInvoice", invoice); err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}
	return nil
}

// AnswerPreCheckout answers a pre-checkout query. Telegram requires an
// answer within 10 seconds or the payment fails.
func (c *Client) AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errorMessage string) error {
	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: queryID,
		OK:                 ok,
		ErrorMessage:       errorMessage,
	}

	start := time.Now()
	_, err := c.api.Request(answer)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.metrics != nil {
		c.metrics.ObserveBotAPICall("answerPreCheckoutQuery", outcome, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("answer pre-checkout: %w", err)
	}
	return nil
}

// Ping verifies the bot token against the Bot API.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.GetMe(); err != nil {
		return fmt.Errorf("get me: %w", err)
	}
	return nil
}
