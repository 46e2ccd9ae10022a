package client

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"mini-linkedin/internal/domain"
)

// State es el estado de la sesion del cliente.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Credentials es lo que persiste entre ejecuciones: token y snapshot de user.
type Credentials struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// CredentialsStore persiste credenciales de sesion entre ejecuciones.
type CredentialsStore interface {
	Load() (Credentials, bool, error)
	Save(creds Credentials) error
	Clear() error
}

// FileCredentialsStore guarda credenciales como JSON en disco.
type FileCredentialsStore struct {
	path string
}

func NewFileCredentialsStore(path string) *FileCredentialsStore {
	return &FileCredentialsStore{path: path}
}

func (s *FileCredentialsStore) Load() (Credentials, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, err
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, false, err
	}
	return creds, creds.Token != "", nil
}

func (s *FileCredentialsStore) Save(creds Credentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileCredentialsStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryCredentialsStore guarda credenciales solo en memoria.
type MemoryCredentialsStore struct {
	mu    sync.Mutex
	creds Credentials
	ok    bool
}

func NewMemoryCredentialsStore() *MemoryCredentialsStore {
	return &MemoryCredentialsStore{}
}

func (s *MemoryCredentialsStore) Load() (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, s.ok, nil
}

func (s *MemoryCredentialsStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.ok = true
	return nil
}

func (s *MemoryCredentialsStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.ok = false
	return nil
}

// SessionHolder es el contenedor explicito de la sesion del cliente:
// anonymous -> authenticating -> authenticated, y de vuelta a anonymous por
// logout o por cualquier 401 del servidor. Se inyecta donde haga falta en vez
// de vivir como singleton global.
type SessionHolder struct {
	mu    sync.Mutex
	api   *Client
	store CredentialsStore
	state State
	creds Credentials
}

// NewSessionHolder construye el holder y se registra en el cliente como fuente
// de token y como destino del hook de 401.
func NewSessionHolder(api *Client, store CredentialsStore) *SessionHolder {
	h := &SessionHolder{
		api:   api,
		store: store,
		state: StateAnonymous,
	}
	api.SetTokenSource(h.Token)
	api.SetUnauthorizedHook(h.ForceLogout)
	return h
}

// Restore intenta reanudar la sesion persistida validando el token contra el
// servidor. Un token invalido o expirado se descarta y se queda anonymous.
func (h *SessionHolder) Restore(ctx context.Context) error {
	creds, ok, err := h.store.Load()
	if err != nil || !ok {
		return err
	}

	h.mu.Lock()
	h.state = StateAuthenticating
	h.creds = creds
	h.mu.Unlock()

	user, err := h.api.Me(ctx)
	if err != nil {
		h.ForceLogout()
		return nil
	}

	h.mu.Lock()
	h.state = StateAuthenticated
	h.creds.User = user
	h.mu.Unlock()
	return nil
}

// Login autentica y persiste credenciales; en fallo vuelve a anonymous sin
// persistir nada.
func (h *SessionHolder) Login(ctx context.Context, email, password string) error {
	h.setAuthenticating()

	resp, err := h.api.Login(ctx, email, password)
	if err != nil {
		h.ForceLogout()
		return err
	}
	return h.establish(resp)
}

// Register crea la cuenta, autentica y persiste credenciales.
func (h *SessionHolder) Register(ctx context.Context, name, email, password, bio string) error {
	h.setAuthenticating()

	resp, err := h.api.Register(ctx, name, email, password, bio)
	if err != nil {
		h.ForceLogout()
		return err
	}
	return h.establish(resp)
}

// Logout vuelve a anonymous incondicionalmente y limpia lo persistido.
func (h *SessionHolder) Logout() {
	h.ForceLogout()
}

// ForceLogout es el destino del hook de 401: cualquier respuesta no autorizada
// tira la sesion, sin importar que pantalla disparo el request.
func (h *SessionHolder) ForceLogout() {
	h.mu.Lock()
	h.state = StateAnonymous
	h.creds = Credentials{}
	h.mu.Unlock()
	_ = h.store.Clear()
}

func (h *SessionHolder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// CurrentUser devuelve el snapshot del usuario autenticado.
func (h *SessionHolder) CurrentUser() (domain.User, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.creds.User, h.state == StateAuthenticated
}

func (h *SessionHolder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.creds.Token
}

func (h *SessionHolder) setAuthenticating() {
	h.mu.Lock()
	h.state = StateAuthenticating
	h.creds = Credentials{}
	h.mu.Unlock()
}

func (h *SessionHolder) establish(resp AuthResponse) error {
	creds := Credentials{Token: resp.Token, User: resp.User}
	h.mu.Lock()
	h.state = StateAuthenticated
	h.creds = creds
	h.mu.Unlock()
	return h.store.Save(creds)
}
