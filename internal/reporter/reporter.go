package reporter

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/erickiiim/newsroom/internal/pipeline"
)

// Reporter sends short batch-outcome messages to a Telegram admin chat.
// It is nil-safe: if adminID is 0 or the receiver is nil, all methods are
// no-ops, so the pipeline runs fine without Telegram configured.
type Reporter struct {
	bot     *tgbotapi.BotAPI
	adminID int64
}

func New(bot *tgbotapi.BotAPI, adminID int64) *Reporter {
	return &Reporter{bot: bot, adminID: adminID}
}

func (r *Reporter) Notify(msg string) {
	if r == nil || r.bot == nil || r.adminID == 0 {
		return
	}
	if _, err := r.bot.Send(tgbotapi.NewMessage(r.adminID, msg)); err != nil {
		slog.Error("failed to send admin notification", "err", err)
	}
}

// ReportOutcomes formats one line per category and sends the batch report.
func (r *Reporter) ReportOutcomes(date string, results []pipeline.Result) {
	if r == nil || r.bot == nil || r.adminID == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "newsroom daily run %s\n", date)
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(&sb, "%s: %s (%v)\n", res.Category, res.Outcome, res.Err)
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", res.Category, res.Outcome)
	}

	r.Notify(sb.String())
}
