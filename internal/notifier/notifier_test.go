package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"CardOptimizer/internal/model"
	"CardOptimizer/internal/recorder"
	"CardOptimizer/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBot struct {
	sent    []tgbotapi.MessageConfig
	fail    int
	updates chan tgbotapi.Update
	stopped bool
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.fail > 0 {
		f.fail--
		return tgbotapi.Message{}, errors.New("bad gateway")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() { f.stopped = true }

func testNotifier(bot *fakeBot) *TelegramNotifier {
	n := newNotifier(bot, 42, zap.NewNop())
	n.backoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	bot := &fakeBot{}
	require.NoError(t, testNotifier(bot).Send("<b>hi</b>"))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, bot.sent[0].ParseMode)
}

func TestSendWithRetry(t *testing.T) {
	bot := &fakeBot{fail: 2}
	require.NoError(t, testNotifier(bot).SendWithRetry(context.Background(), "hello", 3))
	assert.Len(t, bot.sent, 1)

	bot = &fakeBot{fail: 10}
	err := testNotifier(bot).SendWithRetry(context.Background(), "hello", 2)
	assert.ErrorContains(t, err, "all 3 retries exhausted")
	assert.Empty(t, bot.sent)
}

func TestSendWithRetry_Cancelled(t *testing.T) {
	bot := &fakeBot{fail: 10}
	n := testNotifier(bot)
	n.backoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.SendWithRetry(ctx, "hello", 3), context.Canceled)
}

func message(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}}
}

func TestStartPolling(t *testing.T) {
	bot := &fakeBot{updates: make(chan tgbotapi.Update, 4)}
	n := testNotifier(bot)

	var got []string
	handler := func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		if cmd == "/quiet" {
			return ""
		}
		return "ack " + cmd
	}

	bot.updates <- message(42, "  /help ")
	bot.updates <- message(7, "/optimize cards=2")
	bot.updates <- tgbotapi.Update{}
	bot.updates <- message(42, "/quiet")
	close(bot.updates)

	n.StartPolling(context.Background(), handler)

	assert.Equal(t, []string{"/help", "/quiet"}, got, "messages from other chats are ignored")
	require.Len(t, bot.sent, 1)
	assert.Equal(t, "ack /help", bot.sent[0].Text)
}

func TestStartPolling_StopsOnCancel(t *testing.T) {
	bot := &fakeBot{updates: make(chan tgbotapi.Update)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	testNotifier(bot).StartPolling(ctx, func(context.Context, string) string { return "" })
	assert.True(t, bot.stopped)
}

func TestFormatReport(t *testing.T) {
	r := &report.Report{
		Cards:              []string{"AT&T Access", "Pick Two"},
		SelectedCategories: map[string][]string{"Pick Two": {"Cell Phone", "Gym/Fitness"}},
		Memberships:        []string{"COSTCO"},
		MonthlyCashBack:    decimal.RequireFromString("55"),
		AnnualCashBack:     decimal.RequireFromString("660"),
		AverageRate:        decimal.RequireFromString("4.58"),
		MonthlySpend:       decimal.RequireFromString("1200"),
		Requested:          3,
		Multiplier:         1.5,
		Tier:               "Platinum",
	}
	text := FormatReport(r)
	assert.Contains(t, text, "1. AT&amp;T Access")
	assert.Contains(t, text, "Pick Two: Cell Phone, Gym/Fitness")
	assert.Contains(t, text, "Memberships needed:</b> COSTCO")
	assert.Contains(t, text, "Annual: $660.00")
	assert.Contains(t, text, "4.58% of $1200.00/month")
	assert.Contains(t, text, "stopped at 2")
	assert.Contains(t, text, "Reward multiplier: 1.50x (Platinum)")

	empty := FormatReport(&report.Report{Requested: 2})
	assert.Contains(t, empty, "No combination")
}

func TestFormatCatalog(t *testing.T) {
	text := FormatCatalog(CatalogInfo{
		Version: 4,
		Source:  "file:data/card_data.csv",
		Templates: []model.CardTemplate{
			{Name: "Cash Plus", Role: model.RoleChoice, Choices: 2},
			{Name: "Custom Cash", Role: model.RoleChoice, Choices: 1, Boosted: true},
			{Name: "Rotating Five", Role: model.RoleOverlap},
			{Name: "Warehouse Visa", Role: model.RolePlain, Membership: model.MembershipCostco},
			{Name: "Premium", Role: model.RolePlain, AnnualFee: 95},
		},
		SearchSpace: 1234,
	})
	assert.Contains(t, text, "v4 | 5 cards")
	assert.Contains(t, text, "Cash Plus <i>(pick 2)</i>")
	assert.Contains(t, text, "Custom Cash <i>(pick 1, boosted)</i>")
	assert.Contains(t, text, "Rotating Five <i>(overlap)</i>")
	assert.Contains(t, text, "needs Costco")
	assert.Contains(t, text, "$95/yr")
	assert.Contains(t, text, "1234 combinations")
}

func TestFormatTiers(t *testing.T) {
	text := FormatTiers()
	assert.Contains(t, text, "≥ $100000 (Platinum Honors): 1.75x")
	assert.Contains(t, text, "≥ $20000 (Gold): 1.25x")
	assert.Contains(t, text, "below: 1.00x")
}

func TestFormatDigestAndHistory(t *testing.T) {
	since := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	assert.Contains(t, FormatDigest(recorder.Digest{}, since), "No optimizations")

	text := FormatDigest(recorder.Digest{
		Runs: 3, AvgAnnual: 512.5, BestAnnual: 800,
		TopCards: []recorder.CardCount{{Card: "Double Cash", Count: 3}},
	}, since)
	assert.Contains(t, text, "since 2026-10-12")
	assert.Contains(t, text, "Average annual cash back: $512.50")
	assert.Contains(t, text, "Double Cash ×3")

	assert.Equal(t, "No runs recorded yet.", FormatHistory(nil))
	hist := FormatHistory([]recorder.Run{{
		Timestamp: time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local),
		CardCount: 2, Annual: 420, Cards: []string{"A", "B"},
	}})
	assert.Contains(t, hist, "10-18 09:30  2 cards  $420.00/yr")
	assert.Contains(t, hist, "A, B")
}
