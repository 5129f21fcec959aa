package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixiestone/smcbot/internal/database"
	"github.com/Nixiestone/smcbot/models"
)

// Notifier delivers signal events to Telegram subscribers. The
// subscriber list lives in the database; /start and /stop manage it.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	db      *database.DB
	adminID int64
	stats   func(ctx context.Context) (models.WinRateStats, int)
	logger  zerolog.Logger
}

// New creates a Telegram notifier. stats supplies the live win rate
// and active signal count for the /stats command.
func New(token string, adminID int64, db *database.DB, stats func(ctx context.Context) (models.WinRateStats, int)) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &Notifier{
		bot:     bot,
		db:      db,
		adminID: adminID,
		stats:   stats,
		logger:  log.With().Str("component", "telegram").Logger(),
	}, nil
}

// Run consumes command updates until the context is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := n.bot.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			n.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			n.handleCommand(ctx, update.Message)
		}
	}
}

func (n *Notifier) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		if err := n.db.AddSubscriber(ctx, chatID); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("subscribing chat failed")
			n.reply(chatID, "Sorry, there was an error. Please try again later.")
			return
		}
		n.reply(chatID, "You are subscribed. Trade signals will be delivered here.")

	case "stop":
		if err := n.db.RemoveSubscriber(ctx, chatID); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("unsubscribing chat failed")
			n.reply(chatID, "Sorry, there was an error. Please try again later.")
			return
		}
		n.reply(chatID, "You are unsubscribed. Send /start to resume.")

	case "stats":
		stats, active := n.stats(ctx)
		n.reply(chatID, formatStats(stats, active))

	default:
		n.reply(chatID, "Commands: /start, /stop, /stats")
	}
}

func (n *Notifier) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("sending reply failed")
	}
}

// BroadcastSignal sends a new signal card to every subscriber.
func (n *Notifier) BroadcastSignal(ctx context.Context, sig *models.Signal) error {
	return n.broadcast(ctx, formatSignal(sig))
}

// BroadcastClosure sends a closure card to every subscriber.
func (n *Notifier) BroadcastClosure(ctx context.Context, c *models.ClosureNotification) error {
	return n.broadcast(ctx, formatClosure(c))
}

// BroadcastMessage sends a plain HTML message to every subscriber.
func (n *Notifier) BroadcastMessage(ctx context.Context, text string) error {
	return n.broadcast(ctx, text)
}

func (n *Notifier) broadcast(ctx context.Context, text string) error {
	chatIDs, err := n.db.Subscribers(ctx)
	if err != nil {
		return fmt.Errorf("loading subscribers: %w", err)
	}
	if n.adminID != 0 && !contains(chatIDs, n.adminID) {
		chatIDs = append(chatIDs, n.adminID)
	}

	for _, chatID := range chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := n.bot.Send(msg); err != nil {
			// One bad chat must not stop the rest of the fan-out
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("broadcast delivery failed")
		}
	}
	return nil
}

func formatSignal(sig *models.Signal) string {
	emoji := "🟢"
	if sig.Direction == models.DirectionSell {
		emoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s %s</b> (%s)\n\n", emoji, sig.Direction, sig.Symbol, sig.EntryType)
	fmt.Fprintf(&b, "Setup: %s\n", sig.SetupType)
	fmt.Fprintf(&b, "Entry: <code>%.5f</code>\n", sig.EntryPrice)
	fmt.Fprintf(&b, "Stop Loss: <code>%.5f</code> (%.1f pips)\n", sig.StopLoss, sig.SLPips)
	fmt.Fprintf(&b, "Take Profit: <code>%.5f</code> (%.1f pips)\n", sig.TakeProfit, sig.TPPips)
	fmt.Fprintf(&b, "Risk/Reward: 1:%.1f\n", sig.RiskReward)
	fmt.Fprintf(&b, "Confidence: %.0f%% (%s)\n", sig.MLConfidence, sig.SignalStrength)
	fmt.Fprintf(&b, "Trend: %s | Bias: %s\n", sig.Trend, sig.MarketBias)
	fmt.Fprintf(&b, "\n<i>ID %s</i>", sig.SignalID)
	return b.String()
}

func formatClosure(c *models.ClosureNotification) string {
	emoji := "✅"
	if c.Outcome == models.OutcomeLoss {
		emoji = "❌"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s %s %s</b>\n\n", emoji, c.Outcome, c.Direction, c.Symbol)
	fmt.Fprintf(&b, "Result: %+.1f pips\n", c.Pips)
	fmt.Fprintf(&b, "Entry: <code>%.5f</code> → Exit: <code>%.5f</code>\n", c.EntryPrice, c.ExitPrice)
	fmt.Fprintf(&b, "Duration: %s\n", c.Duration)
	fmt.Fprintf(&b, "Reason: %s\n", c.Reason)
	fmt.Fprintf(&b, "\n<i>ID %s</i>", c.SignalID)
	return b.String()
}

func formatStats(stats models.WinRateStats, active int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Signals closed: %d (W %d / L %d)\n", stats.Total, stats.Wins, stats.Losses)
	fmt.Fprintf(&b, "Win rate: %.1f%%\n", stats.WinRate)
	if stats.ProfitFactor > 0 {
		fmt.Fprintf(&b, "Profit factor: %.2f\n", stats.ProfitFactor)
	}
	fmt.Fprintf(&b, "Active signals: %d", active)
	return b.String()
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
