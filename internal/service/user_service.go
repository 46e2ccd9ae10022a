package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mini-linkedin/internal/domain"
	"mini-linkedin/internal/repository"
)

// UserService coordina reglas de negocio para usuarios y credenciales.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Bio      string
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidPassword    = errors.New("password too short")
)

const minPasswordLen = 6

// Register crea un usuario con hash bcrypt y garantiza unicidad de email.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.User{}, ErrInvalidName
	}
	password := strings.TrimSpace(input.Password)
	if len(password) < minPasswordLen {
		return domain.User{}, ErrInvalidPassword
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		Bio:          strings.TrimSpace(input.Bio),
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Dos registros concurrentes con el mismo email: el indice unico decide.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}

	return user, nil
}

// Authenticate devuelve el mismo error para email desconocido y password
// incorrecto, para no revelar que cuentas existen.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateProfile cambia nombre y bio; solo el dueño llega aqui via middleware.
func (s *UserService) UpdateProfile(ctx context.Context, id, name, bio string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, ErrInvalidName
	}
	bio = strings.TrimSpace(bio)

	if err := s.users.UpdateProfile(ctx, id, name, bio); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetByID(ctx, id)
}

// Search lista usuarios por nombre; query vacia devuelve todos.
func (s *UserService) Search(ctx context.Context, query string) ([]domain.User, error) {
	users, err := s.users.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
