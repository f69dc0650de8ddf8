package bot

import (
	"errors"
	"fmt"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/session"
	log "github.com/sirupsen/logrus"
)

// profileCommand edits the contact fields of the signed in user. "-" keeps a field unchanged.
type profileCommand struct {
	baseCommand
	inputs   inputSequence
	identity Identity
	profiles profileService
	form     models.ProfileForm
}

func newProfileCommand(api apiInterface, chatID int64, ticket session.Ticket, identity Identity,
	profiles profileService) *profileCommand {

	cmd := &profileCommand{
		baseCommand: newBaseCommand(api, chatID, ticket),
		identity:    identity,
		profiles:    profiles,
	}
	if user := identity.Current().User; user != nil {
		cmd.form = models.ProfileFormFrom(*user)
	}

	cmd.inputs.add(
		cmd.field("First name", &cmd.form.FirstName),
		cmd.field("Last name", &cmd.form.LastName),
		cmd.field("Phone number", &cmd.form.PhoneNumber),
		cmd.field("Date of birth (YYYY-MM-DD)", &cmd.form.DateOfBirth),
		cmd.field("Email", &cmd.form.Email),
	)
	return cmd
}

func (c *profileCommand) field(name string, value *string) *textInput {

	current := *value
	if current == "" {
		current = "not set"
	}

	input := newTextInput(c.chatID, fmt.Sprintf("%s (current: %s). Send %s to keep it:", name, current, keepValue),
		func(input string) {
			if input != keepValue {
				*value = input
			}
			c.inputs.next()
		})
	input.AddValidation(notEmpty)
	return input
}

func (c *profileCommand) Run() {
	c.send(c.inputs.initMessage())
}

func (c *profileCommand) OnUserInput(input string) {

	if c.inputs.finished() {
		return
	}

	reply, advanced := c.inputs.handle(input)
	c.send(reply)
	if !advanced {
		return
	}

	if c.inputs.finished() {
		c.save()
		return
	}
	c.send(c.inputs.initMessage())
}

func (c *profileCommand) save() {

	ctx, cancel := requestContext()
	defer cancel()

	_, err := c.profiles.UpdateProfile(ctx, c.identity.Current(), c.form)
	switch {
	case errors.Is(err, models.ErrValidation):
		c.finish(validationMessage(err))
		return
	case err != nil:
		c.finish("Couldn't update the profile. " + tryLaterMessage)
		return
	}

	if _, err = c.identity.Refresh(ctx); err != nil {
		log.Debugf("profile saved, refresh of the session failed: %v", err)
	}
	c.finish("Your profile was updated.")
}
