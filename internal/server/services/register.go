package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

const dispatchNote = "verification email could not be sent, request a new code"

type RegisterInput struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	Name         string `json:"name" validate:"omitempty,max=100"`
	Username     string `json:"username" validate:"omitempty,min=3,max=30"`
	MobileNumber string `json:"mobileNumber" validate:"omitempty,mobile"`
}

type RegisterResult struct {
	User              *models.PublicUser `json:"user"`
	EmailDispatchNote string             `json:"emailDispatchNote,omitempty"`
	PreviewURL        string             `json:"previewURL,omitempty"`
}

// Register creates an unverified user and mails a verification code. A failed
// mail leaves the user in place and is reported through EmailDispatchNote.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (res *RegisterResult, err error) {
	defer s.observe(opRegister, &err)

	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	if err := s.check(in); err != nil {
		return nil, err
	}

	users := s.repos.Users()

	if _, err := users.FindByEmail(ctx, in.Email); err == nil {
		return nil, common.NewError(common.ErrorAlreadyExists, "email is already registered")
	} else if !isNotFound(err) {
		return nil, s.internal(ctx, "find user by email", err)
	}

	if in.Username != "" {
		if _, err := users.FindByUsername(ctx, in.Username); err == nil {
			return nil, common.NewError(common.ErrorAlreadyExists, "username is already taken")
		} else if !isNotFound(err) {
			return nil, s.internal(ctx, "find user by username", err)
		}
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	now := s.clock.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Username:     in.Username,
		Name:         in.Name,
		MobileNumber: in.MobileNumber,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := users.Create(ctx, user); err != nil {
		if isAlreadyExists(err) {
			return nil, common.NewError(common.ErrorAlreadyExists, "email or username is already registered")
		}
		return nil, s.internal(ctx, "create user", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)

	res = &RegisterResult{User: user.Public()}

	if err := s.allowCode(ctx, user.Email, models.PurposeVerification); err != nil {
		res.EmailDispatchNote = dispatchNote
		return res, nil
	}
	d, err := s.issueCode(ctx, user.Email, models.PurposeVerification)
	if err != nil {
		res.EmailDispatchNote = dispatchNote
		return res, nil
	}
	if s.cfg.ExposePreview {
		res.PreviewURL = d.PreviewURL
	}
	return res, nil
}
