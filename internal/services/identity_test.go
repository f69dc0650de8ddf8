package services

import (
	"context"
	"errors"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/domain/events"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_IdentityResolver_SignIn_ShouldPublishSnapshot(t *testing.T) {

	assert := assert.New(t)

	verifier := &mockVerifier{}
	verifier.On("Verify", "token").Return("u1", nil)
	client := &mockApi{}
	client.On("GetUser", mock.Anything, "u1").Return(models.Principal{ID: "u1", Email: "a@x.com"}, nil)
	client.On("GetPrivileges", mock.Anything, "u1").Return(models.RoleAdmin, nil)

	bus := EventBus.New()
	var published []events.SessionChanged
	require.NoError(t, bus.Subscribe(events.SessionChangedTopic, func(e events.SessionChanged) {
		published = append(published, e)
	}))

	resolver := NewIdentityResolver(verifier, client, bus)
	snapshot, err := resolver.SignIn(context.Background(), "token")
	assert.NoError(err)

	assert.Equal("u1", snapshot.UID)
	assert.Equal(models.RoleAdmin, snapshot.Role)
	assert.Equal(models.RoleAdmin, snapshot.User.Role)
	assert.Same(snapshot, resolver.Current())
	assert.Equal([]events.SessionChanged{{UID: "u1", Role: models.RoleAdmin}}, published)

	resolver.SignOut()
	current := resolver.Current()
	assert.False(current.SignedIn())
	assert.Equal(models.RoleUnknown, current.Role)
	assert.Nil(current.User)
	assert.Len(published, 2)
}

func Test_IdentityResolver_WhenRoleFetchFails_ShouldUseUnknownRole(t *testing.T) {

	assert := assert.New(t)

	verifier := &mockVerifier{}
	verifier.On("Verify", "token").Return("u1", nil)
	client := &mockApi{}
	client.On("GetUser", mock.Anything, "u1").Return(models.Principal{ID: "u1"}, nil)
	client.On("GetPrivileges", mock.Anything, "u1").
		Return(models.RoleUnknown, &models.TransportError{Op: "get privileges", StatusCode: 500, Err: errors.New("boom")})

	resolver := NewIdentityResolver(verifier, client, EventBus.New())
	snapshot, err := resolver.SignIn(context.Background(), "token")
	assert.NoError(err)

	assert.True(snapshot.SignedIn())
	assert.Equal(models.RoleUnknown, snapshot.Role)
	assert.NotEqual(models.RoleUser, snapshot.Role)
	assert.False(snapshot.CanRenderPrivileged())
}

func Test_IdentityResolver_WhenTokenRejected_ShouldKeepSessionAndNotCallApi(t *testing.T) {

	verifier := &mockVerifier{}
	verifier.On("Verify", "bad").Return("", models.ErrUnauthenticated)
	client := &mockApi{}

	resolver := NewIdentityResolver(verifier, client, EventBus.New())
	snapshot, err := resolver.SignIn(context.Background(), "bad")

	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.False(t, snapshot.SignedIn())
	client.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func Test_IdentityResolver_WhenUserNotRegistered_ShouldReturnUnauthenticated(t *testing.T) {

	verifier := &mockVerifier{}
	verifier.On("Verify", "token").Return("ghost", nil)
	client := &mockApi{}
	client.On("GetUser", mock.Anything, "ghost").
		Return(models.Principal{}, &models.TransportError{Op: "get user", StatusCode: 404, Err: errors.New("not found")})

	resolver := NewIdentityResolver(verifier, client, EventBus.New())
	_, err := resolver.SignIn(context.Background(), "token")

	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.False(t, resolver.Current().SignedIn())
}

func Test_IdentityResolver_Refresh_ShouldRefetchRole(t *testing.T) {

	assert := assert.New(t)

	verifier := &mockVerifier{}
	verifier.On("Verify", "token").Return("u1", nil)
	client := &mockApi{}
	client.On("GetUser", mock.Anything, "u1").Return(models.Principal{ID: "u1"}, nil)
	client.On("GetPrivileges", mock.Anything, "u1").Return(models.RoleUser, nil).Once()
	client.On("GetPrivileges", mock.Anything, "u1").Return(models.RoleOwner, nil).Once()

	resolver := NewIdentityResolver(verifier, client, EventBus.New())
	before, err := resolver.SignIn(context.Background(), "token")
	require.NoError(t, err)

	after, err := resolver.Refresh(context.Background())
	assert.NoError(err)
	assert.Equal(models.RoleUser, before.Role)
	assert.Equal(models.RoleOwner, after.Role)

	resolver.SignOut()
	_, err = resolver.Refresh(context.Background())
	assert.ErrorIs(err, models.ErrUnauthenticated)
}
