package bot

import (
	"sync"

	"github.com/maxaizer/jobmatch/internal/session"
)

// userContext is the state of one chat. mu is held while a message of the chat is handled.
type userContext struct {
	mu             sync.Mutex
	chatID         int64
	identity       Identity
	generation     session.Generation
	curCommand     command
	curCommandName string
}

func newUserContext(chatID int64, identity Identity) *userContext {
	return &userContext{chatID: chatID, identity: identity}
}

func (u *userContext) RunCommand(command command, name string) {
	u.setCommand(command, name)
	u.curCommand.Run()
}

func (u *userContext) HasRunningCommand() bool {
	return u.curCommand != nil
}

func (u *userContext) OnUserInput(input string) {
	u.curCommand.OnUserInput(input)
}

// Reset drops the running command.
func (u *userContext) Reset() {
	u.curCommand = nil
	u.curCommandName = ""
}

func (u *userContext) Snapshot() *session.Snapshot {
	return u.identity.Current()
}

func (u *userContext) setCommand(command command, name string) {
	u.curCommand = command
	u.curCommandName = name
	u.curCommand.WithKeyboardOnFinalMessage(menuKeyboard(u.Snapshot()))
	u.curCommand.WithFinishCallback(u.Reset)
}
