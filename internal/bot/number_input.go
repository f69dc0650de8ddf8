package bot

import (
	"strconv"
	"strings"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// numberInput asks for the 1-based position of an item in a list of count items.
type numberInput struct {
	chatID   int64
	prompt   func() string
	count    func() int
	onFinish func(index int)
}

func newNumberInput(chatID int64, prompt func() string, count func() int, onFinish func(index int)) *numberInput {
	return &numberInput{chatID: chatID, prompt: prompt, count: count, onFinish: onFinish}
}

func (n *numberInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(n.chatID, n.prompt())
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (n *numberInput) HandleInput(input string) botApi.Chattable {

	number, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return botApi.NewMessage(n.chatID, "Please enter a number.")
	}

	if number < 1 || number > n.count() {
		return botApi.NewMessage(n.chatID, "There is no item with this number.")
	}

	n.onFinish(number - 1)
	return nil
}
