package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobmatch/internal/session"
)

const (
	startCommandName   = "start"
	loginCommandName   = "login"
	refreshCommandName = "refresh"
	logoutCommandName  = "logout"

	jobsCommandName         = "Jobs"
	applicationsCommandName = "My applications"
	profileCommandName      = "Edit profile"
	postJobCommandName      = "Post job"
	retryPostingCommandName = "Pending postings"
	manageRolesCommandName  = "Manage roles"
	signOutCommandName      = "Sign out"
	backToMenuCommandName   = "Back to menu"
)

var globalCommands = []string{
	jobsCommandName, applicationsCommandName, profileCommandName,
	postJobCommandName, retryPostingCommandName, manageRolesCommandName,
	signOutCommandName, backToMenuCommandName,
}

var privilegedCommands = []string{postJobCommandName, retryPostingCommandName, manageRolesCommandName}

// commandAllowed decides whether the view behind name may be opened for the snapshot.
// Privileged views require a known privileged role.
func commandAllowed(snapshot *session.Snapshot, name string) bool {
	switch name {
	case startCommandName, loginCommandName, backToMenuCommandName:
		return true
	case postJobCommandName, retryPostingCommandName, manageRolesCommandName:
		return snapshot.CanRenderPrivileged()
	case jobsCommandName, applicationsCommandName, profileCommandName,
		refreshCommandName, logoutCommandName, signOutCommandName:
		return snapshot.SignedIn()
	default:
		return false
	}
}

func menuKeyboard(snapshot *session.Snapshot) botApi.ReplyKeyboardMarkup {

	if !snapshot.SignedIn() {
		return keyboardWithExit()
	}

	rows := [][]botApi.KeyboardButton{
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(jobsCommandName),
			botApi.NewKeyboardButton(applicationsCommandName),
		),
	}

	if snapshot.CanRenderPrivileged() {
		rows = append(rows, botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(postJobCommandName),
			botApi.NewKeyboardButton(retryPostingCommandName),
			botApi.NewKeyboardButton(manageRolesCommandName),
		))
	}

	rows = append(rows, botApi.NewKeyboardButtonRow(
		botApi.NewKeyboardButton(profileCommandName),
		botApi.NewKeyboardButton(signOutCommandName),
	))
	return botApi.NewReplyKeyboard(rows...)
}

func keyboardWithExit() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(backToMenuCommandName),
		),
	)
}

// optionsKeyboard puts options two per row and adds the exit button.
func optionsKeyboard(options []string) botApi.ReplyKeyboardMarkup {

	var rows [][]botApi.KeyboardButton
	for i := 0; i < len(options); i += 2 {
		row := botApi.NewKeyboardButtonRow(botApi.NewKeyboardButton(options[i]))
		if i+1 < len(options) {
			row = append(row, botApi.NewKeyboardButton(options[i+1]))
		}
		rows = append(rows, row)
	}

	rows = append(rows, botApi.NewKeyboardButtonRow(botApi.NewKeyboardButton(backToMenuCommandName)))
	return botApi.NewReplyKeyboard(rows...)
}
