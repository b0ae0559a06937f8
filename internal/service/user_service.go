package service

import (
	"context"
	"errors"
	"strings"

	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// errBadCredentials is returned for an unknown user and a wrong password alike.
var errBadCredentials = models.NewUnauthorizedError(
	"Please enter a correct username and password. Note that both fields may be case-sensitive.")

type UserService struct {
	users repository.UserRepository
	cost  int
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Signup validates the form and creates the account. Field problems, including
// a taken username or email, come back as forms.Errors.
func (s *UserService) Signup(ctx context.Context, in forms.SignupInput) (*models.User, error) {
	data, errs := forms.ValidateSignup(in)
	if errs.Any() {
		return nil, errs
	}

	existing, err := s.users.GetByEmail(ctx, data.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, forms.Errors{"email": {"A user with that email already exists."}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password1), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  data.Username,
		Email:     data.Email,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Password:  string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return nil, forms.Errors{"username": {"A user with that username already exists."}}
		}
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errBadCredentials
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// SetAdmin grants or revokes access to the admin endpoints.
func (s *UserService) SetAdmin(ctx context.Context, username string, admin bool) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin == admin {
		return user, nil
	}
	user.IsAdmin = admin
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}
