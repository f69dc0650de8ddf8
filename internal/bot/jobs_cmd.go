package bot

import (
	"errors"
	"fmt"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/session"
	log "github.com/sirupsen/logrus"
)

const missingResumeMessage = "Please upload your resume before applying."

// applyCommand shows the open jobs and applies to the chosen one with the selected skills.
type applyCommand struct {
	baseCommand
	inputs       inputSequence
	actor        func() *session.Snapshot
	jobs         jobPipeline
	applications applicationService

	openJobs []models.Job
	chosen   models.Job
	skills   *skillsInput
}

func newApplyCommand(api apiInterface, chatID int64, ticket session.Ticket, actor func() *session.Snapshot,
	jobs jobPipeline, applications applicationService) *applyCommand {

	cmd := &applyCommand{
		baseCommand:  newBaseCommand(api, chatID, ticket),
		actor:        actor,
		jobs:         jobs,
		applications: applications,
	}

	cmd.skills = newSkillsInput(chatID, nil, func(*models.SkillSelection) { cmd.inputs.next() })
	cmd.inputs.add(
		newNumberInput(chatID, cmd.jobsPrompt, func() int { return len(cmd.openJobs) }, cmd.onJobChosen),
		cmd.skills,
	)
	return cmd
}

func (c *applyCommand) Run() {

	ctx, cancel := requestContext()
	defer cancel()

	jobs, err := c.jobs.ListActive(ctx)
	if err != nil {
		c.finish("Couldn't load jobs. " + tryLaterMessage)
		return
	}

	if len(jobs) == 0 {
		c.finish("There are no open jobs right now.")
		return
	}

	c.openJobs = jobs
	c.send(c.inputs.initMessage())
}

func (c *applyCommand) OnUserInput(input string) {

	if c.inputs.finished() {
		return
	}

	reply, advanced := c.inputs.handle(input)
	c.send(reply)
	if !advanced {
		return
	}

	if c.inputs.finished() {
		c.apply()
		return
	}
	c.send(c.inputs.initMessage())
}

func (c *applyCommand) jobsPrompt() string {
	return formatJobs(c.openJobs) + "\n\nSend the number of the job you want to apply to."
}

func (c *applyCommand) onJobChosen(index int) {
	c.chosen = c.openJobs[index]
	c.skills.selection = models.NewSkillSelection(c.chosen.RequiredSkills)
	c.inputs.next()
}

func (c *applyCommand) apply() {

	ctx, cancel := requestContext()
	defer cancel()

	match, err := c.applications.Apply(ctx, c.actor(), c.chosen, c.skills.selection)
	switch {
	case err == nil:
		c.finish(fmt.Sprintf("You applied to %s at %s. Status: %s.", match.Job.Title, match.Job.Company, match.Status))
	case errors.Is(err, models.ErrMissingResume):
		c.finish(missingResumeMessage)
	case errors.Is(err, models.ErrValidation):
		c.finish(validationMessage(err))
	default:
		log.Debugf("apply to job %d failed: %v", c.chosen.ID, err)
		c.finish("Couldn't apply. " + tryLaterMessage)
	}
}
