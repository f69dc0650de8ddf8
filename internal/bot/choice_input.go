package bot

import (
	"slices"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// choiceInput accepts one of the options shown on the keyboard.
type choiceInput struct {
	chatID   int64
	prompt   string
	options  []string
	onFinish func(choice string)
}

func newChoiceInput(chatID int64, prompt string, options []string, onFinish func(choice string)) *choiceInput {
	return &choiceInput{chatID: chatID, prompt: prompt, options: options, onFinish: onFinish}
}

func (a *choiceInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, a.prompt)
	msg.ReplyMarkup = optionsKeyboard(a.options)
	return msg
}

func (a *choiceInput) HandleInput(input string) botApi.Chattable {
	if !slices.Contains(a.options, input) {
		return botApi.NewMessage(a.chatID, "Please choose one of the options on the keyboard.")
	}
	a.onFinish(input)
	return nil
}

const (
	yesOption = "Yes"
	noOption  = "No"
)

func newYesNoInput(chatID int64, prompt string, onFinish func(yes bool)) *choiceInput {
	return newChoiceInput(chatID, prompt, []string{yesOption, noOption}, func(choice string) {
		onFinish(choice == yesOption)
	})
}
