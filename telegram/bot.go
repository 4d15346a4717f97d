package telegram

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"evsim/internal"
)

// TgBot implements EventHandler, pushing transaction events to a static
// list of chats.
type TgBot struct {
	api     *tgbotapi.BotAPI
	chatIds []int64
	send    chan MessageContent
}

type MessageContent struct {
	ChatID int64
	Text   string
}

func NewBot(apiKey string, chatIds []int64) (*TgBot, error) {
	api, err := tgbotapi.NewBotAPI(apiKey)
	if err != nil {
		return nil, err
	}
	return &TgBot{
		api:     api,
		chatIds: chatIds,
		send:    make(chan MessageContent, 100),
	}, nil
}

func (b *TgBot) Start() {
	go b.sendPump()
}

func (b *TgBot) sendPump() {
	for message := range b.send {
		msg := tgbotapi.NewMessage(message.ChatID, message.Text)
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("bot: error sending message: %v", err)
		}
	}
}

func (b *TgBot) broadcast(text string) {
	for _, chatId := range b.chatIds {
		b.send <- MessageContent{ChatID: chatId, Text: text}
	}
}

func (b *TgBot) OnTransactionStart(event *internal.EventMessage) {
	b.broadcast(fmt.Sprintf("%s started transaction #%d on connector %d (tag %s)",
		event.ChargePointId, event.TransactionId, event.ConnectorId, event.IdTag))
}

func (b *TgBot) OnTransactionStop(event *internal.EventMessage) {
	b.broadcast(fmt.Sprintf("%s stopped transaction #%d at %d Wh",
		event.ChargePointId, event.TransactionId, event.MeterWh))
}
