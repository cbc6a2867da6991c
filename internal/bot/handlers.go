// Package bot contains the funnel event handlers: the logic between a
// classified inbound event and the outbound Telegram calls.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"funnel-bot/internal/domain"
	"funnel-bot/internal/funnel"
	"funnel-bot/internal/invite"
	"funnel-bot/internal/telegram"
)

const depositedCallback = "deposited"

type Handlers struct {
	tg            telegram.API
	tracker       *funnel.Tracker
	links         *invite.Issuer
	channelID     int64
	affiliateBase string
	log           *slog.Logger
}

func NewHandlers(tg telegram.API, tracker *funnel.Tracker, links *invite.Issuer, channelID int64, affiliateBase string, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		tg:            tg,
		tracker:       tracker,
		links:         links,
		channelID:     channelID,
		affiliateBase: affiliateBase,
		log:           log,
	}
}

// Handle routes one event to its handler. All state mutation happens
// below here; the dispatcher only classifies.
func (h *Handlers) Handle(ctx context.Context, ev domain.Event) error {
	switch ev.Kind {
	case domain.EventStart:
		return h.handleStart(ctx, ev)
	case domain.EventJoinRequest:
		return h.handleJoinRequest(ctx, ev)
	case domain.EventCallback:
		return h.handleCallback(ctx, ev)
	case domain.EventProof:
		return h.handleProof(ctx, ev)
	}
	return fmt.Errorf("unhandled event kind %d", ev.Kind)
}

func (h *Handlers) handleStart(ctx context.Context, ev domain.Event) error {
	tag := domain.CampaignTag(firstToken(ev.Payload))
	tag, err := h.tracker.Attribute(ctx, ev.User, tag)
	if err != nil {
		return fmt.Errorf("attribute %d: %w", ev.User, err)
	}

	// Without a join path the start message is useless, so a link
	// failure aborts before anything is sent.
	joinLink, err := h.links.GetOrCreate(ctx, tag)
	if err != nil {
		return fmt.Errorf("invite link for %q: %w", tag, err)
	}

	if _, err := h.tracker.MarkStarted(ctx, ev.User); err != nil {
		return fmt.Errorf("mark started %d: %w", ev.User, err)
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔐 Join Private Channel", joinLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🧾 Create Trading Account", h.affiliateLink(tag)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I've Deposited", depositedCallback+":"+string(tag)),
		),
	)
	text := fmt.Sprintf(
		"Hey %s 👋\n\n"+
			"Follow these steps:\n"+
			"1) Tap *Join Private Channel* (request → gets auto-approved).\n"+
			"2) Create your account and deposit.\n"+
			"3) Tap *I've Deposited* and send proof.\n",
		ev.Name)
	if err := h.tg.SendMessage(ctx, ev.ChatID, text, &kb); err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	return nil
}

func (h *Handlers) handleJoinRequest(ctx context.Context, ev domain.Event) error {
	// The approval is the one critical side effect. If it fails the user
	// stays pending and state stays put; retry is left to redelivery.
	if err := h.tg.ApproveJoinRequest(ctx, h.channelID, int64(ev.User)); err != nil {
		return fmt.Errorf("approve user %d: %w", ev.User, err)
	}

	changed, err := h.tracker.MarkJoined(ctx, ev.User)
	if err != nil {
		return fmt.Errorf("mark joined %d: %w", ev.User, err)
	}
	if !changed {
		return nil
	}

	// Welcome DM only for users who started a conversation first; a user
	// who joined straight off the link never can receive one anyway.
	_, started, err := h.tracker.Campaign(ctx, ev.User)
	if err != nil || !started {
		return err
	}
	welcome := "You're in ✅\n\n" +
		"Next:\n" +
		"• Create your account and deposit\n" +
		"• Then tap *I've Deposited* and send a screenshot.\n"
	if err := h.tg.SendMessage(ctx, int64(ev.User), welcome, nil); err != nil {
		// The approval already happened and is not reversible, so a
		// rejected DM must not fail the handler.
		h.log.Warn("welcome dm failed", "user", int64(ev.User), "err", err)
	}
	return nil
}

func (h *Handlers) handleCallback(ctx context.Context, ev domain.Event) error {
	// Dismiss the client's loading spinner no matter what happens next.
	if err := h.tg.AnswerCallback(ctx, ev.CallbackID); err != nil {
		h.log.Warn("answer callback failed", "user", int64(ev.User), "err", err)
	}
	if !strings.HasPrefix(ev.CallbackData, depositedCallback) || ev.MessageID == 0 {
		return nil
	}
	prompt := "Great! Please *reply* to this chat with your deposit screenshot."
	if err := h.tg.EditMessageText(ctx, ev.ChatID, ev.MessageID, prompt); err != nil {
		return fmt.Errorf("edit deposit prompt: %w", err)
	}
	return nil
}

func (h *Handlers) handleProof(ctx context.Context, ev domain.Event) error {
	// Content is not inspected here; review happens out of band.
	if _, err := h.tracker.MarkDeposited(ctx, ev.User); err != nil {
		return fmt.Errorf("mark deposited %d: %w", ev.User, err)
	}
	ack := "Got it ✅ Our team will review and activate you shortly."
	if err := h.tg.SendMessage(ctx, ev.ChatID, ack, nil); err != nil {
		return fmt.Errorf("proof ack: %w", err)
	}
	return nil
}

func (h *Handlers) affiliateLink(tag domain.CampaignTag) string {
	t := url.QueryEscape(string(tag))
	return fmt.Sprintf("%sadtrack=%s&utm_source=telegram&utm_campaign=%s", h.affiliateBase, t, t)
}

// firstToken returns the first whitespace-delimited token of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
