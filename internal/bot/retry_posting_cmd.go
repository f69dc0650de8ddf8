package bot

import (
	"fmt"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/session"
)

// retryPostingCommand lists jobs whose details were never saved and populates the chosen one again.
type retryPostingCommand struct {
	baseCommand
	jobs     jobPipeline
	postings []models.Posting
	input    *numberInput
}

func newRetryPostingCommand(api apiInterface, chatID int64, ticket session.Ticket, jobs jobPipeline) *retryPostingCommand {

	cmd := &retryPostingCommand{
		baseCommand: newBaseCommand(api, chatID, ticket),
		jobs:        jobs,
	}

	cmd.input = newNumberInput(chatID,
		func() string { return formatPostings(cmd.postings) + "\n\nSend the number of the posting to retry." },
		func() int { return len(cmd.postings) },
		cmd.retry)
	return cmd
}

func (c *retryPostingCommand) Run() {

	ctx, cancel := requestContext()
	defer cancel()

	postings, err := c.jobs.Pending(ctx)
	if err != nil {
		c.finish("Couldn't load unfinished postings. " + tryLaterMessage)
		return
	}

	if len(postings) == 0 {
		c.finish("There are no unfinished postings.")
		return
	}

	c.postings = postings
	c.send(c.input.InitMessage())
}

func (c *retryPostingCommand) OnUserInput(input string) {
	if c.postings == nil {
		return
	}
	c.send(c.input.HandleInput(input))
}

func (c *retryPostingCommand) retry(index int) {

	ctx, cancel := requestContext()
	defer cancel()

	jobID := c.postings[index].JobID
	if err := c.jobs.Retry(ctx, jobID); err != nil {
		c.finish(fmt.Sprintf("Job %d is still unfinished: %v", jobID, err))
		return
	}
	c.finish(fmt.Sprintf("Job %d was populated.", jobID))
}
