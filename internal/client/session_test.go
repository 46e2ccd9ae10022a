package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mini-linkedin/internal/domain"
)

const testToken = "valid-token"

var testUser = domain.User{ID: "u1", Name: "Ann", Email: "ann@x.com"}

// fakeAPI levanta un servidor minimo que acepta un unico token valido.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+testToken
	}
	writeJSON := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	requireMethod := func(method string, h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("/auth/login", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != testUser.Email || req.Password != "pw123456" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, AuthResponse{Token: testToken, User: testUser})
	}))
	mux.HandleFunc("/auth/register", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == testUser.Email {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email already registered"})
			return
		}
		user := domain.User{ID: "u2", Name: req.Name, Email: req.Email}
		writeJSON(w, http.StatusCreated, AuthResponse{Token: testToken, User: user})
	}))
	mux.HandleFunc("/auth/me", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]domain.User{"user": testUser})
	}))
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []domain.Post{})
		case http.MethodPost:
			if !authorized(r) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
			writeJSON(w, http.StatusCreated, domain.Post{ID: "p1", Author: testUser})
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionHolder_LoginTransitions(t *testing.T) {
	srv := fakeAPI(t)
	store := NewMemoryCredentialsStore()
	holder := NewSessionHolder(New(srv.URL), store)

	if holder.State() != StateAnonymous {
		t.Fatalf("expected anonymous start, got %v", holder.State())
	}

	if err := holder.Login(context.Background(), "ann@x.com", "pw123456"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if holder.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", holder.State())
	}
	if user, ok := holder.CurrentUser(); !ok || user.ID != testUser.ID {
		t.Fatalf("unexpected current user: %+v %v", user, ok)
	}

	// El login persiste token + snapshot de usuario.
	creds, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("expected persisted credentials: %v %v", ok, err)
	}
	if creds.Token != testToken || creds.User.ID != testUser.ID {
		t.Fatalf("unexpected persisted creds: %+v", creds)
	}
}

func TestSessionHolder_LoginFailureStaysAnonymous(t *testing.T) {
	srv := fakeAPI(t)
	store := NewMemoryCredentialsStore()
	holder := NewSessionHolder(New(srv.URL), store)

	err := holder.Login(context.Background(), "ann@x.com", "wrong-pass")
	if err == nil {
		t.Fatalf("expected login error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if holder.State() != StateAnonymous {
		t.Fatalf("expected anonymous after failed login, got %v", holder.State())
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatalf("nothing should be persisted after failed login")
	}
}

func TestSessionHolder_Register(t *testing.T) {
	srv := fakeAPI(t)
	holder := NewSessionHolder(New(srv.URL), NewMemoryCredentialsStore())

	if err := holder.Register(context.Background(), "Bob", "bob@x.com", "pw123456", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if holder.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", holder.State())
	}

	// Email duplicado: el servidor responde 400 y la sesion cae.
	err := holder.Register(context.Background(), "Other", "ann@x.com", "pw123456", "")
	if err == nil {
		t.Fatalf("expected duplicate email error")
	}
	if holder.State() != StateAnonymous {
		t.Fatalf("expected anonymous after failed register, got %v", holder.State())
	}
}

func TestSessionHolder_RestoreValidToken(t *testing.T) {
	srv := fakeAPI(t)
	store := NewMemoryCredentialsStore()
	if err := store.Save(Credentials{Token: testToken, User: testUser}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	holder := NewSessionHolder(New(srv.URL), store)

	if err := holder.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if holder.State() != StateAuthenticated {
		t.Fatalf("expected authenticated after restore, got %v", holder.State())
	}
}

func TestSessionHolder_RestoreInvalidTokenClearsStore(t *testing.T) {
	srv := fakeAPI(t)
	store := NewMemoryCredentialsStore()
	if err := store.Save(Credentials{Token: "stale-token", User: testUser}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	holder := NewSessionHolder(New(srv.URL), store)

	if err := holder.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if holder.State() != StateAnonymous {
		t.Fatalf("expected anonymous after stale restore, got %v", holder.State())
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatalf("stale credentials should be cleared")
	}
}

func TestSessionHolder_Any401ForcesLogout(t *testing.T) {
	srv := fakeAPI(t)
	store := NewMemoryCredentialsStore()
	api := New(srv.URL)
	holder := NewSessionHolder(api, store)

	if err := holder.Login(context.Background(), "ann@x.com", "pw123456"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Se invalida el token del lado del cliente: el proximo request protegido
	// devuelve 401 y el hook tira la sesion completa.
	api.SetTokenSource(func() string { return "stale-token" })
	if _, err := api.CreatePost(context.Background(), "hola"); err == nil {
		t.Fatalf("expected 401 error")
	}

	if holder.State() != StateAnonymous {
		t.Fatalf("expected forced logout, got %v", holder.State())
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatalf("credentials should be cleared after forced logout")
	}
}

func TestSessionHolder_Logout(t *testing.T) {
	srv := fakeAPI(t)
	store := NewMemoryCredentialsStore()
	holder := NewSessionHolder(New(srv.URL), store)

	if err := holder.Login(context.Background(), "ann@x.com", "pw123456"); err != nil {
		t.Fatalf("login: %v", err)
	}
	holder.Logout()
	if holder.State() != StateAnonymous {
		t.Fatalf("expected anonymous after logout, got %v", holder.State())
	}
	if holder.Token() != "" {
		t.Fatalf("token should be cleared")
	}
}

func TestFileCredentialsStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileCredentialsStore(path)

	if _, ok, err := store.Load(); ok || err != nil {
		t.Fatalf("expected empty load, got ok=%v err=%v", ok, err)
	}

	creds := Credentials{Token: testToken, User: testUser}
	if err := store.Save(creds); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 perms, got %o", perm)
	}

	loaded, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Token != testToken || loaded.User.ID != testUser.ID {
		t.Fatalf("unexpected credentials: %+v", loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatalf("expected empty load after clear")
	}
	// Clear de un store ya vacio no falla.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
