package bot

import (
	"fmt"
	"strings"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobmatch/internal/domain/models"
)

const (
	doneOption   = "Done"
	selectedMark = "✅ "
)

// skillsInput toggles required skills on and off until the candidate presses Done.
type skillsInput struct {
	chatID    int64
	selection *models.SkillSelection
	onFinish  func(selection *models.SkillSelection)
}

func newSkillsInput(chatID int64, selection *models.SkillSelection, onFinish func(*models.SkillSelection)) *skillsInput {
	return &skillsInput{chatID: chatID, selection: selection, onFinish: onFinish}
}

func (s *skillsInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(s.chatID, "Tap the required skills you have, then press "+doneOption+".\n"+s.summary())
	msg.ReplyMarkup = s.keyboard()
	return msg
}

func (s *skillsInput) HandleInput(input string) botApi.Chattable {

	if input == doneOption {
		s.onFinish(s.selection)
		return nil
	}

	input = strings.TrimPrefix(input, selectedMark)
	if !s.selection.Available().Contains(input) {
		return botApi.NewMessage(s.chatID, "This job doesn't require that skill.")
	}

	s.selection.Toggle(input)
	msg := botApi.NewMessage(s.chatID, s.summary())
	msg.ReplyMarkup = s.keyboard()
	return msg
}

func (s *skillsInput) summary() string {
	selected := s.selection.Selected()
	if len(selected) == 0 {
		return "Selected: none"
	}
	return fmt.Sprintf("Selected: %s", selected)
}

func (s *skillsInput) keyboard() botApi.ReplyKeyboardMarkup {
	options := make([]string, 0, len(s.selection.Available())+1)
	for _, skill := range s.selection.Available() {
		if s.selection.IsSelected(skill) {
			skill = selectedMark + skill
		}
		options = append(options, skill)
	}
	return optionsKeyboard(append(options, doneOption))
}
