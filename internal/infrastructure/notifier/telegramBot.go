package notifier

import (
	"context"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"fantasy_trades/internal/domain/entity"
)

// maxViolationsListed keeps messages well below Telegram's length limit.
const maxViolationsListed = 15

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (b *TelegramBot) NotifyTradeReport(ctx context.Context, report entity.TradeReport) error {
	return b.sendHTML(ctx, FormatTradeReport(report))
}

func (b *TelegramBot) NotifyPriceSummary(ctx context.Context, summary entity.PriceSummary) error {
	return b.sendHTML(ctx, FormatPriceSummary(summary))
}

func (b *TelegramBot) sendHTML(ctx context.Context, text string) error {
	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func FormatTradeReport(report entity.TradeReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>Trades annotated</b> · %s\n", html.EscapeString(filepath.Base(report.Dataset)))
	fmt.Fprintf(&sb, "Rounds: %d, annotated: %d\n", report.Rounds, report.Annotated)

	if report.BaselinePreserved {
		sb.WriteString("Preseason trades kept\n")
	}

	if len(report.Violations) == 0 {
		sb.WriteString("Trade counts match every phase")
		return sb.String()
	}

	fmt.Fprintf(&sb, "<b>%d rounds off pattern</b>\n", len(report.Violations))

	for i, v := range report.Violations {
		if i == maxViolationsListed {
			fmt.Fprintf(&sb, "… and %d more", len(report.Violations)-maxViolationsListed)
			break
		}

		fmt.Fprintf(&sb, "R%d: %d out / %d in, expected %d\n", v.Round, v.TradedOut, v.TradedIn, v.Expected)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func FormatPriceSummary(summary entity.PriceSummary) string {
	if summary.Mode != "scan" {
		return fmt.Sprintf("<b>Price changes reconciled</b> (%s)\nUpdated: %d", summary.Mode, summary.Updated)
	}

	return fmt.Sprintf(
		"<b>Price changes reconciled</b> (%s)\nRows: %d, players: %d\nUpdated: %d, debuts: %d, without price: %d",
		summary.Mode, summary.Rows, summary.Players, summary.Updated, summary.Debuts, summary.Invalid,
	)
}
