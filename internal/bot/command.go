package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/maxaizer/jobmatch/internal/session"
	log "github.com/sirupsen/logrus"
)

type apiInterface interface {
	Send(chattable tgbotapi.Chattable) (tgbotapi.Message, error)
}

type command interface {
	WithKeyboardOnFinalMessage(tgbotapi.ReplyKeyboardMarkup)
	WithFinishCallback(func())
	Run()
	OnUserInput(input string)
}

func sendWithLogError(api apiInterface, chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := api.Send(chattable)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("error occured while sending message: %v", err)
	}
	return msg, err
}

// sendIfCurrent drops the message when the view that requested it is gone.
func sendIfCurrent(api apiInterface, ticket session.Ticket, chattable tgbotapi.Chattable) {
	if chattable == nil {
		return
	}
	if !ticket.Valid() {
		metrics.StaleResponsesCounter.Inc()
		log.Debug("discarding response of a closed view")
		return
	}
	_, _ = sendWithLogError(api, chattable)
}

// baseCommand carries what every command needs to talk to its chat.
type baseCommand struct {
	api                  apiInterface
	chatID               int64
	ticket               session.Ticket
	finishCallback       func()
	finalMessageKeyboard *tgbotapi.ReplyKeyboardMarkup
}

func newBaseCommand(api apiInterface, chatID int64, ticket session.Ticket) baseCommand {
	return baseCommand{api: api, chatID: chatID, ticket: ticket}
}

func (c *baseCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *baseCommand) WithKeyboardOnFinalMessage(keyboard tgbotapi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *baseCommand) send(chattable tgbotapi.Chattable) {
	sendIfCurrent(c.api, c.ticket, chattable)
}

func (c *baseCommand) sendText(text string) {
	c.send(tgbotapi.NewMessage(c.chatID, text))
}

// finish sends the final message with the menu keyboard and ends the command.
func (c *baseCommand) finish(text string) {
	msg := tgbotapi.NewMessage(c.chatID, text)
	if c.finalMessageKeyboard != nil {
		msg.ReplyMarkup = c.finalMessageKeyboard
	}
	c.send(msg)
	if c.finishCallback != nil {
		c.finishCallback()
	}
}
