package bot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/session"
	"github.com/samber/lo"
)

var jobTypes = []models.JobType{models.JobTypeFull, models.JobTypePart, models.JobTypeContract, models.JobTypeUnknown}

// postJobCommand collects a job form field by field and posts it.
type postJobCommand struct {
	baseCommand
	inputs inputSequence
	jobs   jobPipeline
	form   models.JobForm
}

func newPostJobCommand(api apiInterface, chatID int64, ticket session.Ticket, jobs jobPipeline) *postJobCommand {

	cmd := &postJobCommand{
		baseCommand: newBaseCommand(api, chatID, ticket),
		jobs:        jobs,
		form:        models.NewJobForm(),
	}

	cmd.inputs.add(
		cmd.requiredText("Enter the job title:", &cmd.form.Title),
		cmd.requiredText("Enter the company:", &cmd.form.Company),
		cmd.requiredText("Enter the description:", &cmd.form.Description),
		cmd.requiredText("Enter the required skills separated by commas:", &cmd.form.RequiredSkills,
			validation{
				function:     func(input string) bool { return len(models.ParseSkills(input)) > 0 },
				errorMessage: "Please enter at least one skill.",
			}),
		cmd.requiredText("Enter the application deadline as YYYY-MM-DD:", &cmd.form.ApplicationDeadline,
			validation{
				function: func(input string) bool {
					_, err := models.ParseFormDate(input)
					return err == nil
				},
				errorMessage: "Please enter a valid date, e.g. 2025-12-31.",
			}),
		cmd.requiredText("Enter the location:", &cmd.form.Location),
		cmd.requiredText("Enter the salary:", &cmd.form.Salary,
			validation{
				function: func(input string) bool {
					salary, err := strconv.ParseFloat(input, 64)
					return err == nil && salary >= 0
				},
				errorMessage: "The salary must be a non-negative number.",
			}),
		newChoiceInput(chatID, "Choose the job type:",
			lo.Map(jobTypes, func(t models.JobType, _ int) string { return string(t) }),
			func(choice string) {
				cmd.form.JobType = choice
				cmd.inputs.next()
			}),
		newYesNoInput(chatID, "Should candidates see the job right away?", func(yes bool) {
			cmd.form.Active = yes
			cmd.inputs.next()
		}),
	)
	return cmd
}

func (c *postJobCommand) requiredText(prompt string, field *string, validations ...validation) *textInput {
	input := newTextInput(c.chatID, prompt, func(value string) {
		*field = value
		c.inputs.next()
	})
	input.AddValidation(notEmpty)
	for _, v := range validations {
		input.AddValidation(v)
	}
	return input
}

func (c *postJobCommand) Run() {
	c.send(c.inputs.initMessage())
}

func (c *postJobCommand) OnUserInput(input string) {

	if c.inputs.finished() {
		return
	}

	reply, advanced := c.inputs.handle(input)
	c.send(reply)
	if !advanced {
		return
	}

	if c.inputs.finished() {
		c.post()
		return
	}
	c.send(c.inputs.initMessage())
}

func (c *postJobCommand) post() {

	ctx, cancel := requestContext()
	defer cancel()

	jobID, err := c.jobs.Post(ctx, c.form)
	switch {
	case err == nil:
		c.finish(fmt.Sprintf("Job %d was posted.", jobID))
	case errors.Is(err, models.ErrValidation):
		c.finish(validationMessage(err))
	case errors.Is(err, models.ErrPopulateFailed):
		c.finish(fmt.Sprintf("Job %d was created, but its details weren't saved. Open \"%s\" to retry it.",
			jobID, retryPostingCommandName))
	case errors.Is(err, models.ErrAllocationFailed):
		c.finish("Couldn't create the job, nothing was saved. " + tryLaterMessage)
	default:
		c.finish("Couldn't post the job. " + tryLaterMessage)
	}
}
