package bot

import botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

type inputHandler interface {
	InitMessage() botApi.Chattable
	HandleInput(input string) botApi.Chattable
}

// inputSequence runs input handlers one after another.
type inputSequence struct {
	handlers []inputHandler
	current  int
}

func (s *inputSequence) add(handlers ...inputHandler) {
	s.handlers = append(s.handlers, handlers...)
}

func (s *inputSequence) next() {
	s.current++
}

func (s *inputSequence) finished() bool {
	return s.current >= len(s.handlers)
}

func (s *inputSequence) initMessage() botApi.Chattable {
	if s.finished() {
		return nil
	}
	return s.handlers[s.current].InitMessage()
}

// handle passes input to the current handler. advanced reports whether the handler accepted it.
func (s *inputSequence) handle(input string) (reply botApi.Chattable, advanced bool) {
	previous := s.current
	reply = s.handlers[s.current].HandleInput(input)
	return reply, previous != s.current
}
