package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"runradar/internal/domain"
	"runradar/internal/service"

	tele "gopkg.in/telebot.v3"
)

// Advisor answers free-form questions; nil when no OpenAI key is set.
type Advisor interface {
	Ask(ctx context.Context, chatID int64, question string) (string, error)
}

// StartTelegramBot wires the /evaluate, /scan, /alerts, and /ask commands
// and starts long polling. Also returns a notifier for scan deliveries; the
// notifier is nil when the bot is disabled.
func StartTelegramBot(evalService *service.EvaluationService, scanService *service.ScanService, advisor Advisor, chatID int64) *AlertNotifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/evaluate", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /evaluate NVDA")
		}
		result, err := evalService.Evaluate(context.Background(), args[0])
		if err != nil {
			return c.Send(fmt.Sprintf("Error evaluating %s: %v", strings.ToUpper(args[0]), err))
		}
		return c.Send(FormatEvaluation(result))
	})

	b.Handle("/scan", func(c tele.Context) error {
		if err := c.Send("Running market scan, this takes a while..."); err != nil {
			return err
		}
		result, err := scanService.RunScan(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Scan failed: %v", err))
		}
		return c.Send(FormatScanResult(result))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		limit := 5
		if args := c.Args(); len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				limit = n
			}
		}
		alerts, err := scanService.RecentAlerts(context.Background(), limit)
		if err != nil {
			return c.Send(fmt.Sprintf("Error loading alerts: %v", err))
		}
		if len(alerts) == 0 {
			return c.Send("No alerts delivered yet.")
		}
		var sb strings.Builder
		for _, a := range alerts {
			fmt.Fprintf(&sb, "%s score %d at $%.2f (%s)\n", a.Ticker, a.BreakoutScore, a.AlertPrice, a.SentAt.Format("Jan 2 15:04"))
		}
		return c.Send(sb.String())
	})

	b.Handle("/ask", func(c tele.Context) error {
		if advisor == nil {
			return c.Send("Advisor is not configured.")
		}
		question := strings.TrimSpace(c.Message().Payload)
		if question == "" {
			return c.Send("Usage: /ask should I chase this NVDA breakout?")
		}
		answer, err := advisor.Ask(context.Background(), c.Chat().ID, question)
		if err != nil {
			return c.Send(fmt.Sprintf("Advisor error: %v", err))
		}
		return c.Send(answer)
	})

	log.Println("Telegram bot started")
	go b.Start()

	return NewAlertNotifier(b, chatID)
}

// AlertNotifier pushes breakout alerts to the configured chat.
type AlertNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func NewAlertNotifier(bot *tele.Bot, chatID int64) *AlertNotifier {
	if bot == nil || chatID == 0 {
		return nil
	}
	return &AlertNotifier{bot: bot, chatID: chatID}
}

func (n *AlertNotifier) NotifyAlert(_ context.Context, stock domain.BreakoutStock) error {
	_, err := n.bot.Send(tele.ChatID(n.chatID), stock.HumanizedAlert)
	return err
}

// FormatEvaluation renders an evaluation for chat delivery.
func FormatEvaluation(r domain.EvaluationResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: run score %d (%s)\n", r.Ticker, r.RunScore, r.Verdict)
	fmt.Fprintf(&sb, "Institutional %.0f | Narrative %.0f | Other %.0f\n", r.InstitutionalScore, r.NarrativeScore, r.OtherScore)
	fmt.Fprintf(&sb, "Upside: %s | Fakeout risk: %s\n", r.UpsideProjection, r.FakeoutRisk)
	fmt.Fprintf(&sb, "Position: %s\n", r.Decision.PositionSizing)
	if len(r.WatchFor) > 0 {
		sb.WriteString("Watch for:\n")
		for _, item := range r.WatchFor {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
	}
	return sb.String()
}

// FormatScanResult renders a scan summary for chat delivery.
func FormatScanResult(r domain.ScanRunResult) string {
	if len(r.Candidates) == 0 {
		return fmt.Sprintf("Scanned %d tickers, no breakout candidates today.", r.Scanned)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scanned %d tickers, %d candidates (%d new, %d already alerted):\n",
		r.Scanned, len(r.Candidates), r.Delivered, r.Suppressed)
	for _, c := range r.Candidates {
		fmt.Fprintf(&sb, "%s score %d at $%.2f (%s)\n", c.Ticker, c.BreakoutScore, c.ClosePrice, c.SetupType)
	}
	return sb.String()
}
