package services

import (
	"context"
	"strings"

	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/session"
	log "github.com/sirupsen/logrus"
)

type profileClient interface {
	UpdateUser(ctx context.Context, user models.Principal) error
}

type ProfileService struct {
	client profileClient
}

func NewProfileService(client profileClient) *ProfileService {
	return &ProfileService{client: client}
}

// UpdateProfile stores the contact fields of the signed in principal and returns the updated principal.
// The role is never part of a profile update.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor *session.Snapshot, form models.ProfileForm) (models.Principal, error) {

	if !actor.SignedIn() {
		return models.Principal{}, models.ErrUnauthenticated
	}

	if err := form.Validate(); err != nil {
		return models.Principal{}, err
	}

	dob, err := models.ParseFormDate(strings.TrimSpace(form.DateOfBirth))
	if err != nil {
		return models.Principal{}, models.NewValidationError("Date of birth must be a valid YYYY-MM-DD date")
	}

	user := models.Principal{
		ID:          actor.UID,
		FirstName:   strings.TrimSpace(form.FirstName),
		LastName:    strings.TrimSpace(form.LastName),
		PhoneNumber: strings.TrimSpace(form.PhoneNumber),
		DateOfBirth: dob,
		Email:       strings.TrimSpace(form.Email),
		Role:        actor.Role,
	}

	if err := s.client.UpdateUser(ctx, user); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("failed to update profile of %s: %v", actor.UID, err)
		return models.Principal{}, err
	}
	return user, nil
}
