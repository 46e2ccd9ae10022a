package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mini-linkedin/internal/domain"
	"mini-linkedin/internal/repository"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if _, exists := m.usersByEmail[user.Email]; exists {
		return repository.ErrDuplicateKey
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id, name, bio string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Name = name
	user.Bio = bio
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) Search(_ context.Context, query string) ([]domain.User, error) {
	var users []domain.User
	for _, u := range m.usersByID {
		if query == "" || strings.Contains(strings.ToLower(u.Name), strings.ToLower(query)) {
			users = append(users, u)
		}
	}
	return users, nil
}

func TestUserServiceRegister_HashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ann",
		Email:    "  ANN@X.com ",
		Password: "pw123456",
		Bio:      "hello",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ann@x.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "pw123456" {
		t.Fatalf("expected hashed password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw123456")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestUserServiceRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	if _, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw123456"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "ann@x.com", Password: "pw654321"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserServiceRegister_Validation(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	if _, err := svc.Register(context.Background(), RegisterInput{Name: "", Email: "a@x.com", Password: "pw123456"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "", Password: "pw123456"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "a@x.com", Password: "pw"}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestUserServiceAuthenticate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	registered, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "ann@x.com", "pw123456")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUserServiceAuthenticate_SameErrorForUnknownEmailAndBadPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	if _, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw123456"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, errUnknown := svc.Authenticate(context.Background(), "nobody@x.com", "pw123456")
	_, errBadPass := svc.Authenticate(context.Background(), "ann@x.com", "wrong-pass")
	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errBadPass, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errUnknown, errBadPass)
	}
}

func TestUserServiceUpdateProfile(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	registered, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), registered.ID, "Ann B", "new bio")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Ann B" || updated.Bio != "new bio" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	if _, err := svc.UpdateProfile(context.Background(), "missing", "X", ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.UpdateProfile(context.Background(), registered.ID, "  ", ""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestUserServiceSearch_EmptyResultIsNotNil(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	users, err := svc.Search(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty slice, got %#v", users)
	}
}
