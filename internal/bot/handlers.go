package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/omarshaarawi/hoopsbot/internal/models"
)

const commandTimeout = 45 * time.Second

// Service is what the bot commands read from.
type Service interface {
	GetStandings(ctx context.Context) (string, error)
	GetWeekReport(ctx context.Context, matchupPeriod int) (string, error)
	GetSeasonSummary(ctx context.Context) (string, error)
	GetPredictionsReport(ctx context.Context, team string) (string, error)
	GetPreviewReport(ctx context.Context) (string, error)
	GetTeamRoster(ctx context.Context, teamName string) (string, error)
	WhoHas(ctx context.Context, playerName string) (string, error)
	ChatContext(ctx context.Context) models.ChatContext
}

type Chatter interface {
	Answer(ctx context.Context, query string, data any) string
}

type Handler struct {
	fantasyService Service
	chat           Chatter
}

func NewHandler(fantasyService Service, chat Chatter) *Handler {
	return &Handler{fantasyService: fantasyService, chat: chat}
}

const helpText = "Available commands:\n" +
	"/standings - League standings\n" +
	"/week [n] - All-play results for a week (current if omitted)\n" +
	"/season - Season report and leaders\n" +
	"/predict [team] - Projected results for this week's matchups\n" +
	"/preview - Next week's matchup preview\n" +
	"/team <team> - View a team's roster\n" +
	"/player <player> - Check which team has a player\n" +
	"Or just ask a question about the league."

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to HoopsBot! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "standings":
		h.reply(&msg, "fetching standings", func() (string, error) {
			return h.fantasyService.GetStandings(ctx)
		})
	case "week":
		h.handleWeek(ctx, &msg, args)
	case "season":
		h.reply(&msg, "fetching season report", func() (string, error) {
			return h.fantasyService.GetSeasonSummary(ctx)
		})
	case "predict":
		h.reply(&msg, "fetching predictions", func() (string, error) {
			return h.fantasyService.GetPredictionsReport(ctx, args)
		})
	case "preview":
		h.reply(&msg, "fetching preview", func() (string, error) {
			return h.fantasyService.GetPreviewReport(ctx)
		})
	case "team":
		if args == "" {
			msg.Text = "Please provide a team name. Usage: /team <team name>"
			break
		}
		h.reply(&msg, "getting team roster", func() (string, error) {
			return h.fantasyService.GetTeamRoster(ctx, args)
		})
	case "player", "whohas":
		if args == "" {
			msg.Text = "Please provide a player name. Usage: /player <player name>"
			break
		}
		h.reply(&msg, "checking who has player", func() (string, error) {
			return h.fantasyService.WhoHas(ctx, args)
		})
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleWeek(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	week := 0
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			msg.Text = "Please provide a week number. Usage: /week [n]"
			return
		}
		week = n
	}
	h.reply(msg, "fetching week", func() (string, error) {
		return h.fantasyService.GetWeekReport(ctx, week)
	})
}

// HandleText answers a free-text message through the chatbot. Replies are
// plain text since generated answers are not valid Markdown.
func (h *Handler) HandleText(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	msg.Text = h.chat.Answer(ctx, update.Message.Text, h.fantasyService.ChatContext(ctx))
	return msg
}

func (h *Handler) reply(msg *tgbotapi.MessageConfig, action string, fetch func() (string, error)) {
	text, err := fetch()
	if err != nil {
		msg.Text = fmt.Sprintf("Error %s: %v", action, err)
		msg.ParseMode = ""
		return
	}
	msg.Text = text
}
