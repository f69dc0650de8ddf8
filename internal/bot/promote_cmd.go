package bot

import (
	"errors"
	"fmt"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/services"
	"github.com/maxaizer/jobmatch/internal/session"
	"github.com/samber/lo"
)

var grantableRoles = []models.Role{models.RoleUser, models.RoleAdmin, models.RoleOwner}

// promoteCommand changes the role of a user found by email.
type promoteCommand struct {
	baseCommand
	inputs     inputSequence
	roleChoice *choiceInput
	actor      func() *session.Snapshot
	privileges privilegeManager

	roster []models.Principal
	target models.Principal
	role   models.Role
}

func newPromoteCommand(api apiInterface, chatID int64, ticket session.Ticket, actor func() *session.Snapshot,
	privileges privilegeManager) *promoteCommand {

	cmd := &promoteCommand{
		baseCommand: newBaseCommand(api, chatID, ticket),
		actor:       actor,
		privileges:  privileges,
	}

	email := newTextInput(chatID, "Enter the email of the user:", func(string) {
		cmd.roleChoice.prompt = cmd.rolePrompt()
		cmd.inputs.next()
	})
	email.AddValidation(notEmpty)
	email.AddValidation(validation{
		function: func(input string) bool {
			target, err := services.FindByEmail(cmd.roster, input)
			if err != nil {
				return false
			}
			cmd.target = target
			return true
		},
		errorMessage: models.UserNotFoundMessage,
	})

	roles := lo.FilterMap(grantableRoles, func(role models.Role, _ int) (string, bool) {
		return string(role), actor().Role.CanGrant(role)
	})
	cmd.roleChoice = newChoiceInput(chatID, "Choose the new role:", roles, func(choice string) {
		cmd.role = models.Role(choice)
		cmd.inputs.next()
	})
	cmd.inputs.add(email, cmd.roleChoice)
	return cmd
}

// rolePrompt shows the target's stored role above the choice.
func (c *promoteCommand) rolePrompt() string {

	ctx, cancel := requestContext()
	defer cancel()

	current := "unavailable"
	if role, err := c.privileges.CurrentRole(ctx, c.target.ID); err == nil {
		current = string(role)
	}
	return fmt.Sprintf("%s\nCurrent role: %s\nChoose the new role:", c.target.Email, current)
}

func (c *promoteCommand) Run() {

	ctx, cancel := requestContext()
	defer cancel()

	roster, err := c.privileges.LoadRoster(ctx, c.actor())
	switch {
	case errors.Is(err, models.ErrPrivilegeDenied):
		c.finish("You don't have permission to manage roles.")
		return
	case err != nil:
		c.finish("Couldn't load users. " + tryLaterMessage)
		return
	}

	c.roster = roster
	c.send(c.inputs.initMessage())
}

func (c *promoteCommand) OnUserInput(input string) {

	if c.roster == nil || c.inputs.finished() {
		return
	}

	reply, advanced := c.inputs.handle(input)
	c.send(reply)
	if !advanced {
		return
	}

	if c.inputs.finished() {
		c.promote()
		return
	}
	c.send(c.inputs.initMessage())
}

func (c *promoteCommand) promote() {

	ctx, cancel := requestContext()
	defer cancel()

	err := c.privileges.Promote(ctx, c.actor(), c.target.ID, c.role)
	switch {
	case err == nil:
		c.finish(fmt.Sprintf("%s is %s now.", c.target.Email, c.role))
	case errors.Is(err, models.ErrPrivilegeDenied):
		c.finish(fmt.Sprintf("You can't grant the %s role.", c.role))
	case errors.Is(err, models.ErrValidation):
		c.finish(validationMessage(err))
	default:
		c.finish("Couldn't change the role. " + tryLaterMessage)
	}
}
