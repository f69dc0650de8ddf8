package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobmatch/internal/auth"
	"github.com/maxaizer/jobmatch/internal/domain/events"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/session"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Identity is the signed in state of one chat.
type Identity interface {
	Current() *session.Snapshot
	SignIn(ctx context.Context, token string) (*session.Snapshot, error)
	Refresh(ctx context.Context) (*session.Snapshot, error)
	SignOut()
}

type privilegeManager interface {
	LoadRoster(ctx context.Context, actor *session.Snapshot) ([]models.Principal, error)
	Promote(ctx context.Context, actor *session.Snapshot, targetUID string, role models.Role) error
	CurrentRole(ctx context.Context, uid string) (models.Role, error)
}

type jobPipeline interface {
	Post(ctx context.Context, form models.JobForm) (int64, error)
	Retry(ctx context.Context, jobID int64) error
	Pending(ctx context.Context) ([]models.Posting, error)
	ListActive(ctx context.Context) ([]models.Job, error)
}

type applicationService interface {
	Apply(ctx context.Context, actor *session.Snapshot, job models.Job, selection *models.SkillSelection) (models.Match, error)
	ListMatches(ctx context.Context, actor *session.Snapshot) (models.Matches, error)
	Withdraw(ctx context.Context, actor *session.Snapshot, matches models.Matches, index int, confirm func() bool) (models.Matches, error)
	ListFeedback(ctx context.Context, matchID int64) ([]models.Feedback, error)
}

type profileService interface {
	UpdateProfile(ctx context.Context, actor *session.Snapshot, form models.ProfileForm) (models.Principal, error)
}

type sessionLinkRepository interface {
	Save(ctx context.Context, chatID int64, token string) error
	GetAll(ctx context.Context) ([]models.SessionLink, error)
	Remove(ctx context.Context, chatID int64) error
}

// Services are the use cases the bot renders. Every chat gets its own identity from NewIdentity.
type Services struct {
	NewIdentity  func() Identity
	Privileges   privilegeManager
	Jobs         jobPipeline
	Applications applicationService
	Profiles     profileService
	Sessions     sessionLinkRepository
}

func (s Services) validate() error {
	var errs []error
	if s.NewIdentity == nil {
		errs = append(errs, errors.New("identity factory is nil"))
	}
	if s.Privileges == nil {
		errs = append(errs, errors.New("privilege manager is nil"))
	}
	if s.Jobs == nil {
		errs = append(errs, errors.New("job pipeline is nil"))
	}
	if s.Applications == nil {
		errs = append(errs, errors.New("application service is nil"))
	}
	if s.Profiles == nil {
		errs = append(errs, errors.New("profile service is nil"))
	}
	if s.Sessions == nil {
		errs = append(errs, errors.New("session links repository is nil"))
	}
	return errors.Join(errs...)
}

const restoreConcurrency = 4

type Bot struct {
	tgApi        *botApi.BotAPI
	api          apiInterface
	bus          EventBus.Bus
	services     Services
	mu           sync.Mutex
	userContexts map[int64]*userContext
}

func NewBot(token string, bus EventBus.Bus, services Services) (*Bot, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	createdBot, err := newBot(api, bus, services)
	if err != nil {
		return nil, err
	}
	createdBot.tgApi = api
	return createdBot, nil
}

func newBot(api apiInterface, bus EventBus.Bus, services Services) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	if err := services.validate(); err != nil {
		return nil, err
	}

	createdBot := &Bot{api: api, bus: bus, services: services, userContexts: make(map[int64]*userContext)}

	err := bus.SubscribeAsync(events.RoleChangedTopic, createdBot.onRoleChanged, false)
	if err != nil {
		return nil, err
	}
	return createdBot, nil
}

func (b *Bot) Run() {

	b.restoreSessions()

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.tgApi.GetUpdatesChan(updateConfig)

	for update := range updates {

		if update.Message == nil {
			continue
		}

		if update.Message.Chat.IsGroup() || update.Message.Chat.IsSuperGroup() {
			continue
		}

		go b.handleMessage(update.Message)
	}
}

func (b *Bot) Stop() {
	b.tgApi.StopReceivingUpdates()
	_ = b.bus.Unsubscribe(events.RoleChangedTopic, b.onRoleChanged)
}

func (b *Bot) userContext(chatID int64) *userContext {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx := b.userContexts[chatID]
	if ctx == nil {
		ctx = newUserContext(chatID, b.services.NewIdentity())
		b.userContexts[chatID] = ctx
	}
	return ctx
}

func (b *Bot) handleMessage(message *botApi.Message) {

	uc := b.userContext(message.Chat.ID)

	cmd := message.Command()
	if cmd == "" && slices.Contains(globalCommands, message.Text) {
		cmd = message.Text
	}

	// A new view closes the current one before waiting for it, so its late responses are dropped.
	if cmd != "" {
		uc.generation.Invalidate()
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if cmd != "" {
		b.handleCommand(uc, cmd, message.CommandArguments())
	} else {
		b.handleInput(uc, message.Text)
	}
}

func (b *Bot) handleCommand(uc *userContext, name string, args string) {

	ticket := uc.generation.Ticket()
	snapshot := uc.Snapshot()

	if !commandAllowed(snapshot, name) {
		uc.Reset()
		b.reply(ticket, b.deniedMessage(uc.chatID, snapshot, name))
		return
	}

	switch name {
	case startCommandName, backToMenuCommandName:
		uc.Reset()
		b.reply(ticket, b.menuMessage(uc, snapshot))
	case loginCommandName:
		uc.Reset()
		b.reply(ticket, b.login(uc, args))
	case refreshCommandName:
		uc.Reset()
		b.reply(ticket, b.refresh(uc))
	case logoutCommandName, signOutCommandName:
		uc.Reset()
		b.reply(ticket, b.logout(uc))
	default:
		cmd, err := b.createCommand(uc, ticket, name)
		if err != nil {
			log.Error(err)
			b.reply(ticket, botApi.NewMessage(uc.chatID, tryLaterMessage))
			return
		}
		uc.RunCommand(cmd, name)
	}
}

func (b *Bot) createCommand(uc *userContext, ticket session.Ticket, name string) (command, error) {

	switch name {
	case jobsCommandName:
		return newApplyCommand(b.api, uc.chatID, ticket, uc.Snapshot, b.services.Jobs, b.services.Applications), nil
	case applicationsCommandName:
		return newApplicationsCommand(b.api, uc.chatID, ticket, uc.Snapshot, b.services.Applications), nil
	case profileCommandName:
		return newProfileCommand(b.api, uc.chatID, ticket, uc.identity, b.services.Profiles), nil
	case postJobCommandName:
		return newPostJobCommand(b.api, uc.chatID, ticket, b.services.Jobs), nil
	case retryPostingCommandName:
		return newRetryPostingCommand(b.api, uc.chatID, ticket, b.services.Jobs), nil
	case manageRolesCommandName:
		return newPromoteCommand(b.api, uc.chatID, ticket, uc.Snapshot, b.services.Privileges), nil
	default:
		return nil, fmt.Errorf("unknown command: %v", name)
	}
}

func (b *Bot) handleInput(uc *userContext, input string) {

	if uc.HasRunningCommand() {
		uc.OnUserInput(input)
		return
	}

	b.reply(uc.generation.Ticket(), botApi.NewMessage(uc.chatID, "Please choose a command."))
}

func (b *Bot) reply(ticket session.Ticket, response botApi.Chattable) {
	sendIfCurrent(b.api, ticket, response)
}

func (b *Bot) menuMessage(uc *userContext, snapshot *session.Snapshot) botApi.MessageConfig {

	if !snapshot.SignedIn() {
		msg := botApi.NewMessage(uc.chatID, "Welcome! Sign in with /login <token>.")
		msg.ReplyMarkup = botApi.NewRemoveKeyboard(true)
		return msg
	}

	text := fmt.Sprintf("Signed in as %s (%s).", displayName(snapshot), snapshot.Role)
	if !snapshot.Role.IsKnown() {
		text += "\nYour role couldn't be determined, so only candidate features are available. Use /refresh to try again."
	}

	msg := botApi.NewMessage(uc.chatID, text)
	msg.ReplyMarkup = menuKeyboard(snapshot)
	return msg
}

func (b *Bot) deniedMessage(chatID int64, snapshot *session.Snapshot, name string) botApi.MessageConfig {
	switch {
	case !snapshot.SignedIn():
		return botApi.NewMessage(chatID, "Please sign in first with /login <token>.")
	case slices.Contains(privilegedCommands, name):
		return botApi.NewMessage(chatID, "You don't have access to this section.")
	default:
		return botApi.NewMessage(chatID, "Unknown command.")
	}
}

func (b *Bot) login(uc *userContext, token string) botApi.Chattable {

	if token == "" {
		return botApi.NewMessage(uc.chatID, "Usage: /login <token>")
	}

	ctx, cancel := requestContext()
	defer cancel()

	snapshot, err := uc.identity.SignIn(ctx, token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return botApi.NewMessage(uc.chatID, "The token has expired, please get a new one.")
	case errors.Is(err, models.ErrUnauthenticated):
		return botApi.NewMessage(uc.chatID, "Sign in failed: the token is invalid.")
	case err != nil:
		return botApi.NewMessage(uc.chatID, "Couldn't sign in. "+tryLaterMessage)
	}

	if err = b.services.Sessions.Save(ctx, uc.chatID, token); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to save session of chat %d: %v", uc.chatID, err)
	}
	return b.menuMessage(uc, snapshot)
}

func (b *Bot) refresh(uc *userContext) botApi.Chattable {

	ctx, cancel := requestContext()
	defer cancel()

	snapshot, err := uc.identity.Refresh(ctx)
	if err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			b.forgetSession(uc.chatID)
			return b.menuMessage(uc, uc.Snapshot())
		}
		return botApi.NewMessage(uc.chatID, "Couldn't refresh the session. "+tryLaterMessage)
	}
	return b.menuMessage(uc, snapshot)
}

func (b *Bot) logout(uc *userContext) botApi.Chattable {
	uc.identity.SignOut()
	b.forgetSession(uc.chatID)

	msg := botApi.NewMessage(uc.chatID, "You were signed out.")
	msg.ReplyMarkup = botApi.NewRemoveKeyboard(true)
	return msg
}

func (b *Bot) forgetSession(chatID int64) {
	ctx, cancel := requestContext()
	defer cancel()

	if err := b.services.Sessions.Remove(ctx, chatID); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to remove session of chat %d: %v", chatID, err)
	}
}

// restoreSessions signs in the chats that were signed in before the restart.
func (b *Bot) restoreSessions() {

	ctx, cancel := requestContext()
	defer cancel()

	links, err := b.services.Sessions.GetAll(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to load sessions: %v", err)
		return
	}

	var restored atomic.Int64
	var group errgroup.Group
	group.SetLimit(restoreConcurrency)

	for _, link := range links {
		link := link
		group.Go(func() error {
			uc := b.userContext(link.ChatID)
			if _, err := uc.identity.SignIn(ctx, link.Token); err != nil {
				log.Infof("session of chat %d wasn't restored: %v", link.ChatID, err)
				if errors.Is(err, models.ErrUnauthenticated) {
					b.forgetSession(link.ChatID)
				}
				return nil
			}
			restored.Add(1)
			return nil
		})
	}

	_ = group.Wait()
	log.Infof("restored %d of %d sessions", restored.Load(), len(links))
}

// onRoleChanged refreshes the chats of the user whose role was changed.
func (b *Bot) onRoleChanged(event events.RoleChanged) {

	b.mu.Lock()
	contexts := make([]*userContext, 0)
	for _, uc := range b.userContexts {
		if uc.Snapshot().UID == event.TargetUID {
			contexts = append(contexts, uc)
		}
	}
	b.mu.Unlock()

	for _, uc := range contexts {
		ctx, cancel := requestContext()
		snapshot, err := uc.identity.Refresh(ctx)
		cancel()
		if err != nil {
			log.Warnf("failed to refresh chat %d after role change: %v", uc.chatID, err)
			continue
		}

		msg := botApi.NewMessage(uc.chatID, fmt.Sprintf("Your role was changed to %s. Press /start to update the menu.", snapshot.Role))
		_, _ = sendWithLogError(b.api, msg)
	}
}

func displayName(snapshot *session.Snapshot) string {
	if snapshot.User == nil {
		return snapshot.UID
	}
	if name := snapshot.User.FullName(); name != "" {
		return name
	}
	return snapshot.User.Email
}
