package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/maxaizer/jobmatch/internal/session"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockApi struct {
	SentMessages []botApi.Chattable
}

func (m *mockApi) Send(chattable botApi.Chattable) (botApi.Message, error) {
	m.SentMessages = append(m.SentMessages, chattable)
	return botApi.Message{}, nil
}

func (m *mockApi) lastText() string {
	if len(m.SentMessages) == 0 {
		return ""
	}
	msg, ok := m.SentMessages[len(m.SentMessages)-1].(botApi.MessageConfig)
	if !ok {
		return ""
	}
	return msg.Text
}

type fakeIdentity struct {
	mock.Mock
	store  *session.Store
	writer *session.Writer
}

func newFakeIdentity(snapshot session.Snapshot) *fakeIdentity {
	store, writer := session.New()
	if snapshot.UID != "" {
		writer.Publish(snapshot)
	}
	return &fakeIdentity{store: store, writer: writer}
}

func (f *fakeIdentity) Current() *session.Snapshot {
	return f.store.Current()
}

func (f *fakeIdentity) SignIn(_ context.Context, token string) (*session.Snapshot, error) {
	args := f.Called(token)
	if args.Error(1) != nil {
		return f.store.Current(), args.Error(1)
	}
	return f.writer.Publish(args.Get(0).(session.Snapshot)), nil
}

func (f *fakeIdentity) Refresh(_ context.Context) (*session.Snapshot, error) {
	return f.store.Current(), nil
}

func (f *fakeIdentity) SignOut() {
	f.writer.Clear()
}

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) Post(_ context.Context, form models.JobForm) (int64, error) {
	args := m.Called(form)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockJobs) Retry(_ context.Context, jobID int64) error {
	return m.Called(jobID).Error(0)
}

func (m *mockJobs) Pending(_ context.Context) ([]models.Posting, error) {
	args := m.Called()
	return args.Get(0).([]models.Posting), args.Error(1)
}

func (m *mockJobs) ListActive(_ context.Context) ([]models.Job, error) {
	args := m.Called()
	return args.Get(0).([]models.Job), args.Error(1)
}

type mockApplications struct {
	mock.Mock
}

func (m *mockApplications) Apply(_ context.Context, actor *session.Snapshot, job models.Job,
	selection *models.SkillSelection) (models.Match, error) {
	args := m.Called(actor.UID, job.ID, selection.Selected())
	return args.Get(0).(models.Match), args.Error(1)
}

func (m *mockApplications) ListMatches(_ context.Context, actor *session.Snapshot) (models.Matches, error) {
	args := m.Called(actor.UID)
	return args.Get(0).(models.Matches), args.Error(1)
}

func (m *mockApplications) Withdraw(_ context.Context, _ *session.Snapshot, matches models.Matches, index int,
	confirm func() bool) (models.Matches, error) {
	args := m.Called(index)
	if !confirm() {
		return matches, nil
	}
	remaining, _ := matches.Without(index)
	return remaining, args.Error(0)
}

func (m *mockApplications) ListFeedback(_ context.Context, matchID int64) ([]models.Feedback, error) {
	args := m.Called(matchID)
	return args.Get(0).([]models.Feedback), args.Error(1)
}

type mockPrivileges struct {
	mock.Mock
}

func (m *mockPrivileges) LoadRoster(_ context.Context, _ *session.Snapshot) ([]models.Principal, error) {
	args := m.Called()
	return args.Get(0).([]models.Principal), args.Error(1)
}

func (m *mockPrivileges) CurrentRole(_ context.Context, uid string) (models.Role, error) {
	args := m.Called(uid)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *mockPrivileges) Promote(_ context.Context, _ *session.Snapshot, targetUID string, role models.Role) error {
	return m.Called(targetUID, role).Error(0)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) UpdateProfile(_ context.Context, _ *session.Snapshot, form models.ProfileForm) (models.Principal, error) {
	args := m.Called(form)
	return args.Get(0).(models.Principal), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Save(_ context.Context, chatID int64, token string) error {
	return m.Called(chatID, token).Error(0)
}

func (m *mockSessions) GetAll(_ context.Context) ([]models.SessionLink, error) {
	args := m.Called()
	return args.Get(0).([]models.SessionLink), args.Error(1)
}

func (m *mockSessions) Remove(_ context.Context, chatID int64) error {
	return m.Called(chatID).Error(0)
}

func simulateUserInput(cmd command, inputs []string) {
	for _, input := range inputs {
		cmd.OnUserInput(input)
	}
}

func signedIn(uid string, role models.Role) func() *session.Snapshot {
	snapshot := &session.Snapshot{UID: uid, Role: role, User: &models.Principal{ID: uid, Email: uid + "@example.com"}}
	return func() *session.Snapshot { return snapshot }
}

func freshTicket() session.Ticket {
	return (&session.Generation{}).Ticket()
}

func goJob() models.Job {
	deadline, _ := models.NewDate(2030, 1, 31)
	return models.Job{
		ID:                  41,
		Title:               "Backend developer",
		Company:             "Initech",
		Description:         "APIs",
		RequiredSkills:      models.NewSkills("Go", "SQL"),
		ApplicationDeadline: deadline,
		Location:            "Remote",
		Salary:              5000,
		JobType:             models.JobTypeFull,
		Active:              true,
	}
}

func Test_CommandAllowed(t *testing.T) {

	signedOut := &session.Snapshot{}
	candidate := signedIn("u1", models.RoleUser)()
	unknown := signedIn("u2", models.RoleUnknown)()
	admin := signedIn("u3", models.RoleAdmin)()
	owner := signedIn("u4", models.RoleOwner)()

	tests := []struct {
		snapshot *session.Snapshot
		name     string
		allowed  bool
	}{
		{signedOut, loginCommandName, true},
		{signedOut, startCommandName, true},
		{signedOut, jobsCommandName, false},
		{signedOut, postJobCommandName, false},
		{candidate, jobsCommandName, true},
		{candidate, applicationsCommandName, true},
		{candidate, postJobCommandName, false},
		{candidate, manageRolesCommandName, false},
		{unknown, jobsCommandName, true},
		{unknown, postJobCommandName, false},
		{unknown, retryPostingCommandName, false},
		{admin, postJobCommandName, true},
		{admin, manageRolesCommandName, true},
		{owner, retryPostingCommandName, true},
		{owner, "unknown", false},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%s/%s", test.snapshot.Role, test.name), func(t *testing.T) {
			assert.Equal(t, test.allowed, commandAllowed(test.snapshot, test.name))
		})
	}
}

func Test_MenuKeyboard_WhenRoleUnknown_ShouldHidePrivilegedButtons(t *testing.T) {

	assert := assert.New(t)

	buttons := func(keyboard botApi.ReplyKeyboardMarkup) []string {
		var texts []string
		for _, row := range keyboard.Keyboard {
			for _, button := range row {
				texts = append(texts, button.Text)
			}
		}
		return texts
	}

	assert.NotContains(buttons(menuKeyboard(signedIn("u", models.RoleUnknown)())), postJobCommandName)
	assert.NotContains(buttons(menuKeyboard(signedIn("u", models.RoleUser)())), manageRolesCommandName)
	assert.Contains(buttons(menuKeyboard(signedIn("u", models.RoleAdmin)())), manageRolesCommandName)
	assert.Contains(buttons(menuKeyboard(signedIn("u", models.RoleUnknown)())), jobsCommandName)
}

func Test_ApplyCmd_WhenValidData_ShouldApplyWithSelectedSkills(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	jobs.On("ListActive").Return([]models.Job{goJob()}, nil)
	applications := &mockApplications{}
	applications.On("Apply", "u1", int64(41), models.NewSkills("Go")).
		Return(models.Match{ID: 7, Status: models.StatusApplied, Job: models.JobSummary{Title: "Backend developer", Company: "Initech"}}, nil)
	api := &mockApi{}
	finished := false

	cmd := newApplyCommand(api, 1, freshTicket(), signedIn("u1", models.RoleUser), jobs, applications)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"1", "Go", doneOption})

	assert.True(finished)
	assert.Contains(api.lastText(), "You applied to Backend developer at Initech")
	applications.AssertExpectations(t)
}

func Test_ApplyCmd_WhenInvalidInput_ShouldWaitForValid(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	jobs.On("ListActive").Return([]models.Job{goJob()}, nil)
	applications := &mockApplications{}
	applications.On("Apply", "u1", int64(41), models.NewSkills("Go", "SQL")).Return(models.Match{ID: 7}, nil)
	finished := false

	cmd := newApplyCommand(&mockApi{}, 1, freshTicket(), signedIn("u1", models.RoleUser), jobs, applications)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"0", "2", "first", "1"})
	simulateUserInput(cmd, []string{"Rust", "Go", "SQL", selectedMark + "SQL", "SQL"})
	assert.False(finished)
	cmd.OnUserInput(doneOption)

	assert.True(finished)
	applications.AssertExpectations(t)
}

func Test_ApplyCmd_WhenResumeMissing_ShouldAskToUploadIt(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	jobs.On("ListActive").Return([]models.Job{goJob()}, nil)
	applications := &mockApplications{}
	applications.On("Apply", "u1", int64(41), models.Skills{}).Return(models.Match{}, models.ErrMissingResume)
	api := &mockApi{}

	cmd := newApplyCommand(api, 1, freshTicket(), signedIn("u1", models.RoleUser), jobs, applications)
	cmd.Run()
	simulateUserInput(cmd, []string{"1", doneOption})

	assert.Equal(missingResumeMessage, api.lastText())
}

func Test_ApplyCmd_WhenNoJobs_ShouldFinish(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	jobs.On("ListActive").Return([]models.Job{}, nil)
	api := &mockApi{}
	finished := false

	cmd := newApplyCommand(api, 1, freshTicket(), signedIn("u1", models.RoleUser), jobs, &mockApplications{})
	cmd.WithFinishCallback(func() { finished = true })
	cmd.Run()

	assert.True(finished)
	assert.Equal("There are no open jobs right now.", api.lastText())
}

func testMatches() models.Matches {
	return models.Matches{
		{ID: 1, Status: models.StatusApplied, Job: models.JobSummary{Title: "Go developer", Company: "Acme"}},
		{ID: 2, Status: models.StatusRejected, Job: models.JobSummary{Title: "QA", Company: "Initech"}},
		{ID: 3, Status: models.StatusApplied, Job: models.JobSummary{Title: "DevOps", Company: "Globex"}},
	}
}

func Test_ApplicationsCmd_WhenFilterChosen_ShouldNotFetchAgain(t *testing.T) {

	assert := assert.New(t)

	applications := &mockApplications{}
	applications.On("ListMatches", "u1").Return(testMatches(), nil).Once()
	api := &mockApi{}

	cmd := newApplicationsCommand(api, 1, freshTicket(), signedIn("u1", models.RoleUser), applications)
	cmd.Run()
	cmd.OnUserInput(string(models.StatusRejected))

	assert.Contains(api.lastText(), "QA at Initech")
	assert.NotContains(api.lastText(), "Acme")

	cmd.OnUserInput(string(models.StatusInterviewScheduled))
	assert.Equal(`You have no applications with status "Interview Scheduled".`, api.lastText())

	cmd.OnUserInput(string(models.FilterAll))
	assert.Contains(api.lastText(), "3. DevOps at Globex")

	applications.AssertNumberOfCalls(t, "ListMatches", 1)
}

func Test_ApplicationsCmd_WhenWithdrawDeclined_ShouldKeepApplication(t *testing.T) {

	assert := assert.New(t)

	applications := &mockApplications{}
	applications.On("ListMatches", "u1").Return(testMatches(), nil)
	applications.On("Withdraw", 0).Return(nil)
	api := &mockApi{}

	cmd := newApplicationsCommand(api, 1, freshTicket(), signedIn("u1", models.RoleUser), applications)
	cmd.Run()
	simulateUserInput(cmd, []string{withdrawOption, "1", noOption})

	assert.Len(cmd.matches, 3)
	assert.Contains(api.lastText(), "1. Go developer at Acme")
}

func Test_ApplicationsCmd_WhenWithdrawFromFilteredList_ShouldRemoveMatchingApplication(t *testing.T) {

	assert := assert.New(t)

	applications := &mockApplications{}
	applications.On("ListMatches", "u1").Return(testMatches(), nil)
	applications.On("Withdraw", 2).Return(nil)
	api := &mockApi{}

	cmd := newApplicationsCommand(api, 1, freshTicket(), signedIn("u1", models.RoleUser), applications)
	cmd.Run()
	cmd.OnUserInput(string(models.StatusApplied))
	simulateUserInput(cmd, []string{withdrawOption, "2", yesOption})

	require.Len(t, cmd.matches, 2)
	assert.Equal(int64(1), cmd.matches[0].ID)
	assert.Equal(int64(2), cmd.matches[1].ID)
	applications.AssertExpectations(t)
}

func Test_ApplicationsCmd_WhenNoFeedback_ShouldSayItsMissing(t *testing.T) {

	applications := &mockApplications{}
	applications.On("ListMatches", "u1").Return(testMatches(), nil)
	applications.On("ListFeedback", int64(2)).Return([]models.Feedback{}, nil)
	api := &mockApi{}

	cmd := newApplicationsCommand(api, 1, freshTicket(), signedIn("u1", models.RoleUser), applications)
	cmd.Run()
	simulateUserInput(cmd, []string{feedbackOption, "2"})

	assert.Equal(t, models.NoFeedbackMessage, api.lastText())
}

func Test_Cmd_WhenViewClosed_ShouldDropResponses(t *testing.T) {

	assert := assert.New(t)

	generation := &session.Generation{}
	ticket := generation.Ticket()
	generation.Invalidate()

	applications := &mockApplications{}
	applications.On("ListMatches", "u1").Return(testMatches(), nil)
	api := &mockApi{}
	before := testutil.ToFloat64(metrics.StaleResponsesCounter)

	cmd := newApplicationsCommand(api, 1, ticket, signedIn("u1", models.RoleUser), applications)
	cmd.Run()

	assert.Empty(api.SentMessages)
	assert.Equal(before+1, testutil.ToFloat64(metrics.StaleResponsesCounter))
}

func Test_PostJobCmd_WhenPopulateFails_ShouldReportAllocatedJob(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	jobs.On("Post", mock.MatchedBy(func(form models.JobForm) bool {
		return form.Title == "Backend developer" && form.JobType == string(models.JobTypePart) && !form.Active
	})).Return(int64(42), fmt.Errorf("%w: job 42: status 422", models.ErrPopulateFailed))
	api := &mockApi{}
	finished := false

	cmd := newPostJobCommand(api, 1, freshTicket(), jobs)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"Backend developer", "Initech", "APIs", "Go, SQL"})
	simulateUserInput(cmd, []string{"31.12.2030", "2030-02-30", "2030-12-31"})
	cmd.OnUserInput("Remote")
	simulateUserInput(cmd, []string{"-5", "lots", "5000"})
	simulateUserInput(cmd, []string{"HALF", string(models.JobTypePart)})
	cmd.OnUserInput(noOption)

	assert.True(finished)
	assert.Contains(api.lastText(), "Job 42 was created")
	jobs.AssertExpectations(t)
}

func Test_PostJobCmd_WhenEmptyInput_ShouldWaitForValue(t *testing.T) {

	api := &mockApi{}
	cmd := newPostJobCommand(api, 1, freshTicket(), &mockJobs{})

	cmd.Run()
	cmd.OnUserInput("   ")

	assert.Equal(t, notEmpty.errorMessage, api.lastText())
	assert.Equal(t, "", cmd.form.Title)
}

func Test_RetryPostingCmd_WhenChosen_ShouldRetryJob(t *testing.T) {

	assert := assert.New(t)

	jobs := &mockJobs{}
	jobs.On("Pending").Return([]models.Posting{{JobID: 42, State: models.PostingFailed, Attempts: 1}}, nil)
	jobs.On("Retry", int64(42)).Return(nil)
	api := &mockApi{}
	finished := false

	cmd := newRetryPostingCommand(api, 1, freshTicket(), jobs)
	cmd.WithFinishCallback(func() { finished = true })
	cmd.Run()
	simulateUserInput(cmd, []string{"2", "1"})

	assert.True(finished)
	assert.Equal("Job 42 was populated.", api.lastText())
	jobs.AssertExpectations(t)
}

func Test_PromoteCmd_WhenEmailUnknown_ShouldReplyUserNotFound(t *testing.T) {

	assert := assert.New(t)

	privileges := &mockPrivileges{}
	privileges.On("LoadRoster").Return([]models.Principal{{ID: "u9", Email: "target@example.com"}}, nil)
	privileges.On("CurrentRole", "u9").Return(models.RoleUser, nil)
	privileges.On("Promote", "u9", models.RoleAdmin).Return(nil)
	api := &mockApi{}
	finished := false

	cmd := newPromoteCommand(api, 1, freshTicket(), signedIn("admin", models.RoleAdmin), privileges)
	cmd.WithFinishCallback(func() { finished = true })
	cmd.Run()

	cmd.OnUserInput("missing@example.com")
	assert.Equal(models.UserNotFoundMessage, api.lastText())

	cmd.OnUserInput("target@example.com")
	cmd.OnUserInput(string(models.RoleOwner))
	assert.False(finished)

	cmd.OnUserInput(string(models.RoleAdmin))
	assert.True(finished)
	privileges.AssertExpectations(t)
}

func Test_PromoteCmd_WhenUserFound_ShouldShowCurrentRoleBeforeChoice(t *testing.T) {

	assert := assert.New(t)

	privileges := &mockPrivileges{}
	privileges.On("LoadRoster").Return([]models.Principal{{ID: "u9", Email: "target@example.com"}}, nil)
	privileges.On("CurrentRole", "u9").Return(models.RoleAdmin, nil)
	privileges.On("Promote", "u9", models.RoleUser).Return(nil)
	api := &mockApi{}

	cmd := newPromoteCommand(api, 1, freshTicket(), signedIn("owner", models.RoleOwner), privileges)
	cmd.Run()

	cmd.OnUserInput("target@example.com")
	assert.Contains(api.lastText(), "Current role: admin")

	cmd.OnUserInput(string(models.RoleUser))
	assert.Equal("target@example.com is user now.", api.lastText())
	privileges.AssertExpectations(t)
}

func Test_PromoteCmd_WhenCurrentRoleFails_ShouldStillOfferChoice(t *testing.T) {

	privileges := &mockPrivileges{}
	privileges.On("LoadRoster").Return([]models.Principal{{ID: "u9", Email: "target@example.com"}}, nil)
	privileges.On("CurrentRole", "u9").Return(models.RoleUnknown, errors.New("timeout"))
	api := &mockApi{}

	cmd := newPromoteCommand(api, 1, freshTicket(), signedIn("owner", models.RoleOwner), privileges)
	cmd.Run()
	cmd.OnUserInput("target@example.com")

	assert.Contains(t, api.lastText(), "Current role: unavailable")
}

func Test_ProfileCmd_WhenKeepValue_ShouldKeepCurrentField(t *testing.T) {

	assert := assert.New(t)

	identity := newFakeIdentity(session.Snapshot{UID: "u1", Role: models.RoleUser, User: &models.Principal{
		ID: "u1", FirstName: "Ann", LastName: "Lee", PhoneNumber: "123", Email: "ann@example.com",
	}})
	profiles := &mockProfiles{}
	profiles.On("UpdateProfile", models.ProfileForm{
		FirstName: "Ann", LastName: "Smith", PhoneNumber: "123", DateOfBirth: "2000-02-29", Email: "ann@example.com",
	}).Return(models.Principal{ID: "u1"}, nil)
	api := &mockApi{}

	cmd := newProfileCommand(api, 1, freshTicket(), identity, profiles)
	cmd.Run()
	simulateUserInput(cmd, []string{keepValue, "Smith", keepValue, "2000-02-29", keepValue})

	assert.Equal("Your profile was updated.", api.lastText())
	profiles.AssertExpectations(t)
}

func newTestBot(t *testing.T, snapshot session.Snapshot) (*Bot, *mockApi, *fakeIdentity, *mockSessions) {

	api := &mockApi{}
	identity := newFakeIdentity(snapshot)
	sessions := &mockSessions{}

	b, err := newBot(api, EventBus.New(), Services{
		NewIdentity:  func() Identity { return identity },
		Privileges:   &mockPrivileges{},
		Jobs:         &mockJobs{},
		Applications: &mockApplications{},
		Profiles:     &mockProfiles{},
		Sessions:     sessions,
	})
	require.NoError(t, err)
	return b, api, identity, sessions
}

func Test_Bot_WhenCandidateOpensPrivilegedView_ShouldDeny(t *testing.T) {

	b, api, _, _ := newTestBot(t, session.Snapshot{UID: "u1", Role: models.RoleUser})

	b.handleMessage(&botApi.Message{Chat: &botApi.Chat{ID: 1}, Text: postJobCommandName})

	assert.Equal(t, "You don't have access to this section.", api.lastText())
}

func Test_Bot_WhenSignedOut_ShouldAskToSignIn(t *testing.T) {

	b, api, _, _ := newTestBot(t, session.Snapshot{})

	b.handleMessage(&botApi.Message{Chat: &botApi.Chat{ID: 1}, Text: jobsCommandName})

	assert.Equal(t, "Please sign in first with /login <token>.", api.lastText())
}

func Test_Bot_Login_ShouldSaveSessionLink(t *testing.T) {

	assert := assert.New(t)

	b, api, identity, sessions := newTestBot(t, session.Snapshot{})
	identity.On("SignIn", "token").Return(session.Snapshot{
		UID: "u1", Role: models.RoleUnknown, User: &models.Principal{ID: "u1", FirstName: "Ann"},
	}, nil)
	sessions.On("Save", int64(1), "token").Return(nil)

	b.handleMessage(&botApi.Message{
		Chat:     &botApi.Chat{ID: 1},
		Text:     "/login token",
		Entities: []botApi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	})

	assert.Contains(api.lastText(), "Signed in as Ann (unknown).")
	assert.Contains(api.lastText(), "/refresh")
	sessions.AssertExpectations(t)
}

func Test_Bot_Logout_ShouldForgetSession(t *testing.T) {

	assert := assert.New(t)

	b, api, identity, sessions := newTestBot(t, session.Snapshot{UID: "u1", Role: models.RoleUser})
	sessions.On("Remove", int64(1)).Return(nil)

	b.handleMessage(&botApi.Message{Chat: &botApi.Chat{ID: 1}, Text: signOutCommandName})

	assert.False(identity.Current().SignedIn())
	assert.Equal("You were signed out.", api.lastText())
	sessions.AssertExpectations(t)
}

func Test_Bot_RestoreSessions_ShouldRemoveRejectedTokens(t *testing.T) {

	b, _, identity, sessions := newTestBot(t, session.Snapshot{})
	sessions.On("GetAll").Return([]models.SessionLink{{ChatID: 1, Token: "expired"}}, nil)
	sessions.On("Remove", int64(1)).Return(nil)
	identity.On("SignIn", "expired").Return(session.Snapshot{}, models.ErrUnauthenticated)

	b.restoreSessions()

	sessions.AssertExpectations(t)
}
