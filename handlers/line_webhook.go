package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"classquest_go/models"
	"classquest_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/linebot"
	"gorm.io/gorm"
)

// LineWebhookHandler processes LINE webhook events. Students link their LINE
// account with a one-time code, then can query their points balance in chat.
type LineWebhookHandler struct {
	DB     *gorm.DB
	Bot    *linebot.Client
	ledger *services.LedgerService
}

func NewLineWebhookHandler(db *gorm.DB) *LineWebhookHandler {
	secret := os.Getenv("LINE_CHANNEL_SECRET")
	token := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")

	if secret == "" || token == "" {
		log.Println("LINE credentials missing: webhook disabled")
		return &LineWebhookHandler{DB: db, Bot: nil, ledger: services.NewLedgerService()}
	}

	bot, err := linebot.New(secret, token)
	if err != nil {
		log.Fatalf("cannot create LINE bot client: %v", err)
	}
	return &LineWebhookHandler{DB: db, Bot: bot, ledger: services.NewLedgerService()}
}

// Handle receives webhook events from the LINE platform
func (h *LineWebhookHandler) Handle(c *fiber.Ctx) error {
	if h.Bot == nil {
		return c.SendStatus(fiber.StatusOK)
	}

	signature := c.Get("X-Line-Signature")
	if signature == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if !validateSignature(os.Getenv("LINE_CHANNEL_SECRET"), c.Body(), signature) {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	// Reply 200 first so LINE verification passes; process asynchronously
	go func(body []byte) {
		var webhook struct {
			Events []*linebot.Event `json:"events"`
		}
		if err := json.Unmarshal(body, &webhook); err != nil {
			log.Printf("Failed to parse LINE event JSON: %v", err)
			return
		}

		for _, event := range webhook.Events {
			switch event.Type {
			case linebot.EventTypeMessage:
				h.handleMessage(event)
			case linebot.EventTypeFollow:
				h.reply(event.ReplyToken,
					"Welcome! Send \"link <code>\" with the code from your profile page to connect your account.")
			case linebot.EventTypeUnfollow:
				h.unlink(event.Source.UserID)
			}
		}
	}(c.Body())

	return c.SendStatus(fiber.StatusOK)
}

func (h *LineWebhookHandler) handleMessage(event *linebot.Event) {
	textMessage, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		return
	}
	lineID := event.Source.UserID
	if lineID == "" {
		return
	}

	text := strings.TrimSpace(textMessage.Text)
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, "link "):
		code := strings.TrimSpace(text[len("link "):])
		h.link(event.ReplyToken, lineID, code)
	case lower == "balance" || lower == "points":
		h.balance(event.ReplyToken, lineID)
	default:
		h.reply(event.ReplyToken,
			"Commands: \"link <code>\" to connect your account, \"balance\" to check your points.")
	}
}

// link connects a LINE account to the student who generated the code. The
// code is single-use: it clears on success.
func (h *LineWebhookHandler) link(replyToken, lineID, code string) {
	if code == "" {
		h.reply(replyToken, "Usage: link <code>")
		return
	}

	var user models.User
	if err := h.DB.Where("line_link_code = ? AND status = ?", code, "active").First(&user).Error; err != nil {
		h.reply(replyToken, "Invalid or expired link code. Generate a new one from your profile page.")
		return
	}

	updates := map[string]interface{}{
		"line_id":        lineID,
		"line_link_code": "",
	}
	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to link LINE account for user %d: %v", user.ID, err)
		h.reply(replyToken, "Something went wrong, please try again.")
		return
	}

	log.Printf("Linked LINE account for user %d", user.ID)
	h.reply(replyToken, fmt.Sprintf("Account linked, %s! Send \"balance\" anytime to check your points.", user.Username))
}

// balance answers a linked student's points balance
func (h *LineWebhookHandler) balance(replyToken, lineID string) {
	var user models.User
	if err := h.DB.Where("line_id = ?", lineID).First(&user).Error; err != nil {
		h.reply(replyToken, "Your LINE account is not linked yet. Send \"link <code>\" first.")
		return
	}

	balance, err := h.ledger.Balance(user.ID)
	if err != nil {
		log.Printf("Failed to fetch balance for user %d: %v", user.ID, err)
		h.reply(replyToken, "Could not fetch your balance right now, please try again.")
		return
	}

	h.reply(replyToken, fmt.Sprintf("You have %d points.", balance))
}

// unlink clears the LineID when a user blocks the official account
func (h *LineWebhookHandler) unlink(lineID string) {
	if lineID == "" {
		return
	}
	if err := h.DB.Model(&models.User{}).Where("line_id = ?", lineID).
		Update("line_id", "").Error; err != nil {
		log.Printf("Failed to unlink LINE account %s: %v", lineID, err)
	}
}

func (h *LineWebhookHandler) reply(replyToken, message string) {
	if replyToken == "" {
		return
	}
	if _, err := h.Bot.ReplyMessage(replyToken, linebot.NewTextMessage(message)).Do(); err != nil {
		log.Printf("LINE reply failed: %v", err)
	}
}

// validateSignature checks the X-Line-Signature HMAC against the body
func validateSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
