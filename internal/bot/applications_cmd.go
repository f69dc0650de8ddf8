package bot

import (
	"errors"
	"slices"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/session"
	"github.com/samber/lo"
)

const (
	withdrawOption = "Withdraw"
	feedbackOption = "Feedback"
)

// applicationsCommand lists the candidate's applications. Filters apply to the fetched list
// without going back to the network. It runs until the user leaves to the menu.
type applicationsCommand struct {
	baseCommand
	actor        func() *session.Snapshot
	applications applicationService

	matches models.Matches
	filter  models.StatusFilter
	pending inputHandler
}

func newApplicationsCommand(api apiInterface, chatID int64, ticket session.Ticket, actor func() *session.Snapshot,
	applications applicationService) *applicationsCommand {

	return &applicationsCommand{
		baseCommand:  newBaseCommand(api, chatID, ticket),
		actor:        actor,
		applications: applications,
		filter:       models.FilterAll,
	}
}

func (c *applicationsCommand) Run() {

	ctx, cancel := requestContext()
	defer cancel()

	matches, err := c.applications.ListMatches(ctx, c.actor())
	if err != nil {
		c.finish("Couldn't load your applications. " + tryLaterMessage)
		return
	}

	c.matches = matches
	c.sendList()
}

func (c *applicationsCommand) OnUserInput(input string) {

	if c.pending != nil {
		c.send(c.pending.HandleInput(input))
		return
	}

	switch {
	case slices.Contains(models.StatusFilters, models.StatusFilter(input)):
		c.filter = models.StatusFilter(input)
		c.sendList()
	case input == withdrawOption:
		c.startPicking("Send the number of the application to withdraw.", c.onWithdrawPicked)
	case input == feedbackOption:
		c.startPicking("Send the number of the application to see its feedback.", c.onFeedbackPicked)
	default:
		c.sendText("Please choose one of the options on the keyboard.")
	}
}

func (c *applicationsCommand) visible() models.Matches {
	return c.matches.Filter(c.filter)
}

func (c *applicationsCommand) sendList() {
	msg := botApi.NewMessage(c.chatID, formatMatches(c.visible(), c.filter))
	msg.ReplyMarkup = c.listKeyboard()
	c.send(msg)
}

func (c *applicationsCommand) listKeyboard() botApi.ReplyKeyboardMarkup {
	options := lo.Map(models.StatusFilters, func(filter models.StatusFilter, _ int) string { return string(filter) })
	if len(c.visible()) > 0 {
		options = append(options, withdrawOption, feedbackOption)
	}
	return optionsKeyboard(options)
}

func (c *applicationsCommand) startPicking(prompt string, onPicked func(match models.Match)) {

	visible := c.visible()
	if len(visible) == 0 {
		c.sendText("There are no applications in this list.")
		return
	}

	input := newNumberInput(c.chatID, func() string { return prompt }, func() int { return len(visible) },
		func(index int) { onPicked(visible[index]) })
	c.pending = input
	c.send(input.InitMessage())
}

func (c *applicationsCommand) onWithdrawPicked(match models.Match) {

	confirm := newYesNoInput(c.chatID, "Withdraw the application to "+match.Job.Title+" at "+match.Job.Company+"?",
		func(yes bool) { c.withdraw(match, yes) })
	c.pending = confirm
	c.send(confirm.InitMessage())
}

func (c *applicationsCommand) withdraw(match models.Match, confirmed bool) {

	c.pending = nil

	ctx, cancel := requestContext()
	defer cancel()

	remaining, err := c.applications.Withdraw(ctx, c.actor(), c.matches, c.matches.IndexOf(match.ID),
		func() bool { return confirmed })
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.sendText("This application doesn't exist anymore.")
	case err != nil:
		c.sendText("Couldn't withdraw the application. " + tryLaterMessage)
	case !confirmed:
		c.sendText("The application was kept.")
	default:
		c.matches = remaining
		c.sendText("The application was withdrawn.")
	}
	c.sendList()
}

func (c *applicationsCommand) onFeedbackPicked(match models.Match) {

	c.pending = nil

	ctx, cancel := requestContext()
	defer cancel()

	feedback, err := c.applications.ListFeedback(ctx, match.ID)
	if err != nil {
		c.sendText("Couldn't load the feedback. " + tryLaterMessage)
		c.sendList()
		return
	}

	msg := botApi.NewMessage(c.chatID, formatFeedback(feedback))
	msg.ReplyMarkup = c.listKeyboard()
	c.send(msg)
}
