package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Gateway/internal/repo"

	"github.com/sirupsen/logrus"
)

type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

type UpdateResponse struct {
	OK     bool     `json:"ok"`
	Result []Update `json:"result"`
}

type button struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// Bot announces pending registrations to the admin chat and applies the
// admin's approve/reject answers.
type Bot struct {
	API     string // e.g. https://api.telegram.org/bot<token>
	AdminID int64
	Repo    repo.Repository
	Client  *http.Client

	announced map[int]bool
}

func NewBot(token string, adminID int64, users repo.Repository) *Bot {
	return &Bot{
		API:       "https://api.telegram.org/bot" + token,
		AdminID:   adminID,
		Repo:      users,
		Client:    &http.Client{Timeout: 30 * time.Second},
		announced: make(map[int]bool),
	}
}

func (b *Bot) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.API+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := b.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", method, res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (b *Bot) getUpdates(ctx context.Context, offset int) ([]Update, error) {
	var out UpdateResponse
	err := b.call(ctx, "getUpdates", map[string]any{"timeout": 20, "offset": offset}, &out)
	return out.Result, err
}

func (b *Bot) answerCallback(ctx context.Context, id, text string) {
	if err := b.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": id, "text": text}, nil); err != nil {
		logrus.WithError(err).Warn("answerCallbackQuery")
	}
}

func (b *Bot) editMessage(ctx context.Context, chatID int64, messageID int, text string) {
	payload := map[string]any{"chat_id": chatID, "message_id": messageID, "text": text}
	if err := b.call(ctx, "editMessageText", payload, nil); err != nil {
		logrus.WithError(err).Warn("editMessageText")
	}
}

// Announce sends one message per pending user not yet announced.
func (b *Bot) Announce(ctx context.Context) error {
	users, err := b.Repo.ListUsers(ctx, true)
	if err != nil {
		return err
	}
	for _, u := range users {
		if b.announced[u.ID] {
			continue
		}
		text := fmt.Sprintf("New registration #%d\nLogin: %s\nEmail: %s", u.ID, u.Login, u.Email)
		if u.Onboarded {
			text += fmt.Sprintf("\nName: %s\nInstitution: %s", u.Name, u.Institution)
		}
		payload := map[string]any{
			"chat_id": b.AdminID,
			"text":    text,
			"reply_markup": map[string]any{
				"inline_keyboard": [][]button{{
					{Text: "Approve", Data: fmt.Sprintf("approve:%d", u.ID)},
					{Text: "Reject", Data: fmt.Sprintf("reject:%d", u.ID)},
				}},
			},
		}
		if err := b.call(ctx, "sendMessage", payload, nil); err != nil {
			return err
		}
		b.announced[u.ID] = true
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat.ID != b.AdminID {
		b.answerCallback(ctx, cb.ID, "Not allowed")
		return
	}
	action, idStr, ok := strings.Cut(cb.Data, ":")
	id, err := strconv.Atoi(idStr)
	if !ok || err != nil {
		b.answerCallback(ctx, cb.ID, "Bad data")
		return
	}

	yes := true
	var upd repo.UserUpdate
	switch action {
	case "approve":
		upd.Approved = &yes
	case "reject":
		upd.Archived = &yes
	default:
		b.answerCallback(ctx, cb.ID, "Unknown action")
		return
	}
	u, err := b.Repo.UpdateUser(ctx, id, upd)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Warn("update user")
		b.answerCallback(ctx, cb.ID, "User not found")
		return
	}
	logrus.WithFields(logrus.Fields{"user": u.Login, "action": action}).Info("registration decided")
	if action == "approve" {
		b.answerCallback(ctx, cb.ID, "Approved")
		b.editMessage(ctx, cb.Message.Chat.ID, cb.Message.MessageID, fmt.Sprintf("✅ Approved %s (#%d)", u.Login, id))
		return
	}
	b.answerCallback(ctx, cb.ID, "Rejected")
	b.editMessage(ctx, cb.Message.Chat.ID, cb.Message.MessageID, fmt.Sprintf("❌ Rejected %s (#%d)", u.Login, id))
}

// Run long-polls updates until ctx is done, announcing new registrations
// between polls.
func (b *Bot) Run(ctx context.Context) {
	offset := 0
	for ctx.Err() == nil {
		if err := b.Announce(ctx); err != nil {
			logrus.WithError(err).Warn("announce pending users")
		}
		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).Warn("getUpdates")
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.CallbackQuery != nil {
				b.handleCallback(ctx, u.CallbackQuery)
			}
		}
	}
}
