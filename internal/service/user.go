// Package service contains the business logic layer: validation, ownership
// checks, the update pipeline and the uniqueness guard. Services accept
// primitives and return domain errors; they know nothing about HTTP.
//
// Every service takes its repositories as interfaces so tests can substitute
// in-memory mocks, and main wires the sqlite implementations in.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/auth"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/patch"
	"github.com/garasiku/servicebook/internal/repository"
)

// UserService handles registration, login and profile management.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles the issued token with the profile the client shows
// after login.
type LoginResult struct {
	Token string      `json:"token"`
	User  LoginedUser `json:"user"`
}

// LoginedUser is the profile subset returned by Login.
type LoginedUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

// Register validates and creates a new account.
//
// The uniqueness guard runs before the insert: email first, then name, each
// with its own message. The UNIQUE constraints in storage catch the rare
// race where two registrations pass the guard with the same value.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "All fields must be filled, including role")
	}

	taken, err := s.users.ExistsByField(ctx, "email", email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("email", "Email is already registered.")
	}

	taken, err = s.users.ExistsByField(ctx, "name", name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("name", "Username is already taken.")
	}

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("name", user.Name),
	)
	return user, nil
}

// Login verifies credentials and issues a token.
//
// The two failure modes share a status but carry distinct tags: "email" for
// an unknown address, "password" for a bad password. Clients key on the tag
// to highlight the right field.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Email and password is required.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("email", "Email not registered")
		}
		return nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperror.Unauthenticated("password", "Wrong password")
		}
		return nil, err
	}

	token, err := s.tokens.Issue(auth.Principal{
		ID:    user.ID,
		Name:  user.Name,
		Role:  user.Role,
		Photo: user.Photo,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	return &LoginResult{
		Token: token,
		User: LoginedUser{
			Name:  user.Name,
			Email: user.Email,
			Photo: user.Photo,
		},
	}, nil
}

// Get returns a user's profile.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Update applies a partial profile update. Only the owner may update their
// profile.
//
// Name and email go through the schema diff; password is handled beside it
// because its equality is semantic: the proposed plaintext is compared
// against the stored hash, and resubmitting the current password is not a
// change. An update where nothing actually changes is rejected.
func (s *UserService) Update(ctx context.Context, principalID, id int64, proposed map[string]any) (*model.User, error) {
	if id != principalID {
		return nil, apperror.Forbidden("You can only update your own profile.")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes, err := model.UserPatchSchema.Diff(user.PatchFields(), proposed)
	if err != nil {
		return nil, err
	}

	if _, ok := changes["email"]; ok {
		email, err := patch.String(changes, "email")
		if err != nil {
			return nil, err
		}
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}

	for _, f := range model.UserPatchSchema.UniqueFields(changes) {
		value, err := patch.String(changes, f.Name)
		if err != nil {
			return nil, err
		}
		taken, err := s.users.ExistsByField(ctx, f.Name, value, id)
		if err != nil {
			return nil, err
		}
		if taken {
			if f.Name == "email" {
				return nil, apperror.Conflict("email", "Email is already registered.")
			}
			return nil, apperror.Conflict("name", "Username is already taken.")
		}
	}

	passwordChanged := false
	if raw, ok := proposed["password"]; ok && raw != nil {
		password, ok := raw.(string)
		if !ok {
			return nil, apperror.ValidationFailed("password", "password must be a string")
		}
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
			if !errors.Is(err, auth.ErrPasswordMismatch) {
				return nil, err
			}
			// A different password is a real change; rehash it.
			hash, err := s.passwords.Hash(password)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = hash
			passwordChanged = true
		}
	}

	if len(changes) == 0 && !passwordChanged {
		return nil, apperror.NoChange()
	}

	if err := applyUserChanges(user, changes); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", slog.Int64("user_id", user.ID))
	return user, nil
}

// Delete removes the account. Only the owner may delete it; vehicles and
// their child resources go with it through the storage cascade.
func (s *UserService) Delete(ctx context.Context, principalID, id int64) error {
	if id != principalID {
		return apperror.Forbidden("You can only update your own profile.")
	}

	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

func applyUserChanges(user *model.User, changes map[string]any) error {
	if _, ok := changes["name"]; ok {
		name, err := patch.String(changes, "name")
		if err != nil {
			return err
		}
		user.Name = name
	}
	if _, ok := changes["email"]; ok {
		email, err := patch.String(changes, "email")
		if err != nil {
			return err
		}
		user.Email = email
	}
	return nil
}
