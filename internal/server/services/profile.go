package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// ProfileUpdate holds the only fields a user may change on their own
// profile. Nil fields are left as they are.
type ProfileUpdate struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	Username     *string `json:"username" validate:"omitempty,min=3,max=30"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,mobile"`
}

func (s *IdentityService) GetProfile(ctx context.Context, userID string) (u *models.PublicUser, err error) {
	defer s.observe(opGetProfile, &err)

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateProfile applies name, username and mobile number. A username held by
// another user is rejected.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (u *models.PublicUser, err error) {
	defer s.observe(opUpdateProfile, &err)

	trim(in.Name)
	trim(in.Username)
	trim(in.MobileNumber)
	if err := s.check(in); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != "" && *in.Username != user.Username {
		owner, err := s.repos.Users().FindByUsername(ctx, *in.Username)
		switch {
		case err == nil && owner.ID != user.ID:
			return nil, common.NewError(common.ErrorAlreadyExists, "username is already taken")
		case err != nil && !isNotFound(err):
			return nil, s.internal(ctx, "find user by username", err)
		}
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.MobileNumber != nil {
		user.MobileNumber = *in.MobileNumber
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.repos.Users().Update(ctx, user); err != nil {
		if isAlreadyExists(err) {
			return nil, common.NewError(common.ErrorAlreadyExists, "username is already taken")
		}
		if isNotFound(err) {
			return nil, common.NewError(common.ErrorNotFound, "user not found")
		}
		return nil, s.internal(ctx, "update user", err)
	}

	return user.Public(), nil
}

func (s *IdentityService) findUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.Users().FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, common.NewError(common.ErrorNotFound, "user not found")
		}
		return nil, s.internal(ctx, "find user by id", err)
	}
	return user, nil
}

func trim(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}
