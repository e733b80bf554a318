package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/shared/config"
	"github.com/frozenfood/server/internal/utils/metrics"
)

// PaymentFlow is the slice of the payment service the bot needs to answer
// Telegram payment updates.
type PaymentFlow interface {
	HandlePreCheckout(ctx context.Context, payload string, totalAmount int64) error
	HandleSuccessfulPayment(ctx context.Context, payload string, totalAmount int64, telegramChargeID, providerChargeID string) error
}

const preCheckoutDeadline = 10 * time.Second

// Bot runs the long-polling update loop: it answers pre-checkout queries,
// records successful payments and serves the /start command.
type Bot struct {
	client    *Client
	payments  PaymentFlow
	cfg       *config.TelegramConfig
	webAppURL string
	metrics   *metrics.Metrics
	logger    *zap.Logger

	wg sync.WaitGroup
}

func NewBot(client *Client, payments PaymentFlow, cfg *config.TelegramConfig, m *metrics.Metrics, logger *zap.Logger) *Bot {
	return &Bot{
		client:    client,
		payments:  payments,
		cfg:       cfg,
		webAppURL: cfg.WebAppURL,
		metrics:   m,
		logger:    logger.Named("bot"),
	}
}

// Start launches the update loop in a background goroutine. It returns
// immediately; call Stop to drain and wait for it.
func (b *Bot) Start(ctx context.Context) {
	updates := b.client.UpdatesChan(b.cfg.PollTimeout)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.logger.Info("update loop started")
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				b.dispatch(ctx, update)
			}
		}
	}()
}

// Stop halts polling and waits for in-flight updates to finish.
func (b *Bot) Stop() {
	b.client.StopPolling()
	b.wg.Wait()
	b.logger.Info("update loop stopped")
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		b.observeUpdate("pre_checkout_query")
		b.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		b.observeUpdate("successful_payment")
		b.handleSuccessfulPayment(ctx, update.Message)
	case update.Message != nil && update.Message.IsCommand():
		b.observeUpdate("command")
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.observeUpdate("message")
	default:
		b.observeUpdate("other")
	}
}

func (b *Bot) observeUpdate(kind string) {
	if b.metrics != nil {
		b.metrics.BotUpdatesTotal.WithLabelValues(kind).Inc()
	}
}

// handlePreCheckout validates the order before the user's money moves.
// Telegram requires an answer within ten seconds.
func (b *Bot) handlePreCheckout(ctx context.Context, query *tgbotapi.PreCheckoutQuery) {
	ctx, cancel := context.WithTimeout(ctx, preCheckoutDeadline)
	defer cancel()

	err := b.payments.HandlePreCheckout(ctx, query.InvoicePayload, int64(query.TotalAmount))
	if err != nil {
		b.logger.Warn("pre-checkout rejected",
			zap.String("payload", query.InvoicePayload),
			zap.Error(err),
		)
		if answerErr := b.client.AnswerPreCheckout(ctx, query.ID, false, "Заказ больше не доступен для оплаты"); answerErr != nil {
			b.logger.Error("answer pre-checkout failed", zap.Error(answerErr))
		}
		return
	}

	if err := b.client.AnswerPreCheckout(ctx, query.ID, true, ""); err != nil {
		b.logger.Error("answer pre-checkout failed", zap.Error(err))
	}
}

func (b *Bot) handleSuccessfulPayment(ctx context.Context, msg *tgbotapi.Message) {
	sp := msg.SuccessfulPayment
	err := b.payments.HandleSuccessfulPayment(ctx,
		sp.InvoicePayload,
		int64(sp.TotalAmount),
		sp.TelegramPaymentChargeID,
		sp.ProviderPaymentChargeID,
	)
	if err != nil {
		b.logger.Error("successful payment processing failed",
			zap.String("payload", sp.InvoicePayload),
			zap.String("telegram_charge_id", sp.TelegramPaymentChargeID),
			zap.Error(err),
		)
		return
	}
	b.logger.Info("payment recorded",
		zap.String("payload", sp.InvoicePayload),
		zap.Int64("chat_id", msg.Chat.ID),
	)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendWelcome(ctx, msg.Chat.ID)
	case "help":
		text := "Магазин замороженных продуктов.\n\n" +
			"/start — открыть магазин\n" +
			"/help — эта справка"
		if err := b.client.SendMessage(ctx, msg.Chat.ID, text); err != nil {
			b.logger.Error("send help failed", zap.Error(err))
		}
	default:
		b.sendWelcome(ctx, msg.Chat.ID)
	}
}

func (b *Bot) sendWelcome(ctx context.Context, chatID int64) {
	text := "Добро пожаловать в «Домашний Стандарт»!\n\n" +
		"Выбирайте замороженные продукты и оформляйте доставку прямо в приложении."
	markup := WebAppKeyboard("Открыть магазин", b.webAppURL)
	if err := b.client.SendMessageWithMarkup(ctx, chatID, text, markup); err != nil {
		b.logger.Error("send welcome failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
