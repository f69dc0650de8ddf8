package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/maxaizer/jobmatch/internal/domain/models"
)

// GetRoster returns every user visible to the actor. Records with both role flags set are skipped.
func (c *Client) GetRoster(ctx context.Context, actorUID string) ([]models.Principal, error) {
	const op = "get roster"

	body, err := c.sendRequest(ctx, op, http.MethodGet, "/users?auth_uid="+url.QueryEscape(actorUID), nil)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &models.TransportError{Op: op, Err: fmt.Errorf("error decoding JSON response: %w", err)}
	}

	roster := make([]models.Principal, 0, len(raw))
	for _, item := range raw {
		var record userRecord
		if err := c.decode(op, item, &record); err != nil {
			continue
		}
		principal, err := record.principal()
		if err != nil {
			continue
		}
		roster = append(roster, principal)
	}
	return roster, nil
}

func (c *Client) GetUser(ctx context.Context, uid string) (models.Principal, error) {
	const op = "get user"

	body, err := c.sendRequest(ctx, op, http.MethodGet, "/users/"+url.PathEscape(uid), nil)
	if err != nil {
		return models.Principal{}, err
	}

	var record userRecord
	if err := c.decode(op, body, &record); err != nil {
		return models.Principal{}, err
	}
	return record.principal()
}

// GetPrivileges returns the role stored for uid. The endpoint answers with a bare role string.
func (c *Client) GetPrivileges(ctx context.Context, uid string) (models.Role, error) {
	const op = "get privileges"

	body, err := c.sendRequest(ctx, op, http.MethodGet, "/users/privileges/"+url.PathEscape(uid), nil)
	if err != nil {
		return models.RoleUnknown, err
	}

	var value string
	if err := json.Unmarshal(body, &value); err != nil {
		return models.RoleUnknown, &models.TransportError{Op: op, Err: fmt.Errorf("error decoding JSON response: %w", err)}
	}

	role, err := models.ToRole(value)
	if err != nil {
		return models.RoleUnknown, &models.TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return role, nil
}

func (c *Client) UpdatePrivileges(ctx context.Context, actorUID, targetUID string, isAdmin, isOwner bool) error {
	if isAdmin && isOwner {
		return models.ErrInvalidRoleCombination
	}
	request := privilegesRequest{TargetUID: targetUID, IsAdmin: isAdmin, IsOwner: isOwner, AuthUID: actorUID}
	_, err := c.sendRequest(ctx, "update privileges", http.MethodPost, "/users/privileges", request)
	return err
}

// UpdateUser stores the principal's contact fields. The date of birth is sent in the wire layout.
func (c *Client) UpdateUser(ctx context.Context, user models.Principal) error {
	request := updateUserRequest{
		UID:         user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DOB:         user.DateOfBirth.WireString(),
		PhoneNumber: user.PhoneNumber,
		Email:       user.Email,
	}
	_, err := c.sendRequest(ctx, "update user", http.MethodPut, "/users/", request)
	return err
}

// HasResume reports whether the candidate has a resume with at least one experience entry.
// A 404 means the candidate never uploaded one.
func (c *Client) HasResume(ctx context.Context, uid string) (bool, error) {
	const op = "get resume"

	body, err := c.sendRequest(ctx, op, http.MethodGet, "/resumes/"+url.PathEscape(uid), nil)
	if err != nil {
		if models.StatusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}

	var record resumeRecord
	if err := c.decode(op, body, &record); err != nil {
		return false, err
	}
	return len(record.Experience) > 0, nil
}
