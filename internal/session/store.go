// Package session owns the authenticated session: the bearer token and the
// user profile captured at login, persisted as an atomic pair.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edushare-client/internal/models"
	appErrors "github.com/noah-isme/edushare-client/pkg/errors"
)

// Store mediates all reads and writes of the persisted session pair. Mutating
// operations are serialized by a single mutex, so concurrent logins cannot
// interleave partial writes.
type Store struct {
	mu        sync.Mutex
	backend   Backend
	apiBase   string
	client    *http.Client
	validator *validator.Validate
	logger    *zap.Logger
}

// New constructs a Store issuing login requests against apiBase.
func New(backend Backend, apiBase string, client *http.Client, validate *validator.Validate, logger *zap.Logger) *Store {
	if client == nil {
		client = http.DefaultClient
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:   backend,
		apiBase:   apiBase,
		client:    client,
		validator: validate,
		logger:    logger,
	}
}

// Login authenticates against POST /auth/login and persists the returned
// token+profile pair. Any rejected-credentials response maps to
// INVALID_CREDENTIALS without revealing which credential was wrong.
func (s *Store) Login(ctx context.Context, username, password string) (*models.Session, error) {
	req := models.LoginRequest{Username: username, Password: password}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.postLogin(ctx, req)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{Token: resp.Token, User: resp.User}
	if err := s.backend.Save(sess); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	s.logger.Info("session established",
		zap.String("user_id", sess.User.ID),
		zap.String("role", string(sess.User.Role)),
	)
	return sess, nil
}

// Logout clears the persisted pair unconditionally. Calling it while already
// logged out is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Clear(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

// IsAuthenticated reports whether a token is currently persisted.
func (s *Store) IsAuthenticated() bool {
	return s.current() != nil
}

// CurrentUser returns the persisted profile, or nil when absent. Corrupt
// persisted state degrades to logged out rather than failing the caller.
func (s *Store) CurrentUser() *models.UserProfile {
	sess := s.current()
	if sess == nil {
		return nil
	}
	user := sess.User
	return &user
}

// Token returns the persisted bearer token, or "" when logged out.
func (s *Store) Token() string {
	sess := s.current()
	if sess == nil {
		return ""
	}
	return sess.Token
}

func (s *Store) current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.backend.Load()
	if err != nil {
		s.logger.Warn("unreadable session state, treating as logged out", zap.Error(err))
		return nil
	}
	return sess
}

func (s *Store) postLogin(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode login request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build login request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusUnauthorized {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(httpResp.Body).Decode(&payload)
		return nil, appErrors.FromStatus(httpResp.StatusCode, payload.Message)
	}

	var resp models.LoginResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed login response")
	}
	if resp.Token == "" || resp.User.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "login response missing token or user")
	}
	return &resp, nil
}
