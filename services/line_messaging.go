package services

import (
	"fmt"
	"log"
	"os"

	"github.com/line/line-bot-sdk-go/linebot"
)

// LineMessagingService wraps the LINE Messaging API client. Students link
// their LINE account through the webhook; pushes go to their linked LineID.
type LineMessagingService struct {
	Bot *linebot.Client
}

func NewLineMessagingService() *LineMessagingService {
	channelSecret := os.Getenv("LINE_CHANNEL_SECRET")
	channelToken := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")

	if channelSecret == "" || channelToken == "" {
		log.Println("LINE Messaging API disabled: missing LINE_CHANNEL_SECRET or LINE_CHANNEL_ACCESS_TOKEN")
		return &LineMessagingService{Bot: nil}
	}

	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		log.Fatalf("Cannot create LINE bot client: %v", err)
	}

	return &LineMessagingService{Bot: bot}
}

// PushText sends a text message to a linked LINE account.
func (s *LineMessagingService) PushText(lineID string, message string) error {
	if s.Bot == nil {
		return fmt.Errorf("LINE Bot client is not initialized")
	}
	if lineID == "" {
		return fmt.Errorf("user has no linked LINE account")
	}

	_, err := s.Bot.PushMessage(lineID, linebot.NewTextMessage(message)).Do()
	if err != nil {
		return fmt.Errorf("LINE Messaging API failed: %v", err)
	}
	return nil
}
