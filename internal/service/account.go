package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/notebook-api/internal/auth"
	"github.com/iliyamo/notebook-api/internal/model"
	"github.com/iliyamo/notebook-api/internal/queue"
	"github.com/iliyamo/notebook-api/internal/repository"
)

// UserStore persists user records. Lookups return repository.ErrNotFound
// when nothing matches and Create returns repository.ErrEmailExists on a
// taken email.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// PasswordHasher is satisfied by *auth.Hasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer is satisfied by *auth.TokenService.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// EventPublisher is satisfied by *queue.Publisher and queue.NopPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=5"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

var accountMessages = map[string]string{
	"name":     "name must not be empty",
	"email":    "Enter a valid email.",
	"password": "password must be at least 5 characters",
}

// AccountService implements registration, login and current user lookup.
type AccountService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewAccountService wires the account use cases; a nil events disables
// publishing.
func NewAccountService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, events EventPublisher, log *slog.Logger) *AccountService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &AccountService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: events,
		log:    log,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Register creates a user and returns a token for it.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = repository.NormalizeEmail(in.Email)
	if err := check(in, accountMessages); err != nil {
		return "", err
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return "", &ValidationError{Fields: []FieldError{{Field: "password", Message: "password must be at most 72 bytes"}}}
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return "", ErrDuplicateEmail
	case !errors.Is(err, repository.ErrNotFound):
		return "", internal("lookup user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", internal("hash password", err)
	}
	u := model.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrEmailExists) {
			return "", ErrDuplicateEmail
		}
		return "", internal("create user", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", internal("issue token", err)
	}
	publish(ctx, s.events, s.log, queue.Event{Type: queue.UserRegistered, UserID: u.ID, OccurredAt: u.CreatedAt})
	return token, nil
}

// Login checks credentials and returns a token. Unknown emails and wrong
// passwords fail identically.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = repository.NormalizeEmail(in.Email)
	if err := check(in, accountMessages); err != nil {
		return "", err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", internal("lookup user", err)
	}
	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", internal("issue token", err)
	}
	return token, nil
}

// CurrentUser returns the authenticated user without the password hash.
func (s *AccountService) CurrentUser(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		// a verified token implies the user existed at issuance
		return model.User{}, internal("get user", err)
	}
	u.PasswordHash = ""
	return u, nil
}

// publish sends ev after a successful write. Failures are logged and
// never surface to the caller.
func publish(ctx context.Context, p EventPublisher, log *slog.Logger, ev queue.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		log.WarnContext(ctx, "publish event failed", "type", ev.Type, "error", err)
	}
}
