package service

import (
	"context"
	"strings"

	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/repository"
	"forum/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

type SignupInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

// Signup registers a user together with a fresh profile.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if fields := validation.Signup(in.Username, in.Email, in.Password); fields != nil {
		observability.AuthEvents.WithLabelValues("signup", "invalid").Inc()
		return nil, models.NewFieldValidationError(fields)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		observability.AuthEvents.WithLabelValues("signup", "conflict").Inc()
		return nil, models.NewConflictError("User already exists")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		observability.AuthEvents.WithLabelValues("signup", "conflict").Inc()
		return nil, models.NewConflictError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Profile:  &models.Profile{},
	}
	if err := s.userRepo.CreateWithProfile(ctx, user); err != nil {
		return nil, err
	}
	observability.AuthEvents.WithLabelValues("signup", "success").Inc()
	return user, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords fail identically.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		observability.AuthEvents.WithLabelValues("login", "failure").Inc()
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}
	observability.AuthEvents.WithLabelValues("login", "success").Inc()
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// IsBanned is a BanChecker backed by the user's profile. A token whose user
// or profile no longer exists no longer authenticates anyone.
func (s *UserService) IsBanned(ctx context.Context, userID uint) (bool, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return false, models.NewUnauthenticatedError("Account no longer exists")
		}
		return false, err
	}
	return profile.Banned, nil
}
