package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "gdpr-backend/internal/shared/auth"
	"gdpr-backend/internal/shared/server/respond"
	"gdpr-backend/internal/shared/telemetry"
	"gdpr-backend/internal/users"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleIDPrefix    = "google:"
	defaultStateTTL   = 5 * time.Minute
)

// UserUpserter records the identity of a user who completed the login.
type UserUpserter interface {
	UpsertFromAuth(ctx context.Context, user users.User) error
}

// GoogleConfig holds the OAuth client settings.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// UIRedirect receives the session token as ?token= after login.
	UIRedirect string
}

// GoogleService signs users in with Google and issues session tokens. Only
// accounts with a verified email are accepted, since that address becomes
// part of the account's exported data.
type GoogleService struct {
	OAuth       *oauth2.Config
	UIRedirect  string
	UserInfoURL string

	users  UserUpserter
	states *stateStore
}

func NewGoogleService(cfg GoogleConfig, userSvc UserUpserter) *GoogleService {
	return &GoogleService{
		OAuth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UIRedirect:  cfg.UIRedirect,
		UserInfoURL: googleUserInfoURL,
		users:       userSvc,
		states:      newStateStore(defaultStateTTL),
	}
}

func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.OAuth.ClientID != "" && s.OAuth.ClientSecret != "" && s.OAuth.RedirectURL != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}
	c.Redirect(http.StatusFound, s.OAuth.AuthCodeURL(s.states.issue()))
}

func (s *GoogleService) callback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	info, err := s.userInfo(ctx, token)
	if err != nil {
		telemetry.Warn("auth.userinfo_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}
	if !info.VerifiedEmail {
		respond.Error(c, http.StatusForbidden, "email_unverified", "a verified email is required", nil)
		return
	}

	user := info.user()
	if s.users != nil {
		if err := s.users.UpsertFromAuth(ctx, user); err != nil {
			telemetry.Error("auth.user_upsert_failed", map[string]any{"user_id": user.ID, "error": err})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record user", nil)
			return
		}
	}

	jwt, err := sharedauth.SignJWT(sharedauth.Claims{
		Sub:     user.ID,
		Email:   user.Email,
		Name:    user.FullName,
		Picture: user.PictureURL,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	target, err := appendToken(s.UIRedirect, jwt)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	telemetry.Info("auth.login", map[string]any{"user_id": user.ID})
	c.Redirect(http.StatusFound, target)
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func (i googleUserInfo) user() users.User {
	return users.User{
		ID:         googleIDPrefix + i.Sub,
		Email:      i.Email,
		FullName:   i.Name,
		GivenName:  i.GivenName,
		FamilyName: i.FamilyName,
		PictureURL: i.Picture,
	}
}

func (s *GoogleService) userInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.UserInfoURL, nil)
	if err != nil {
		return googleUserInfo{}, err
	}
	resp, err := s.OAuth.Client(ctx, token).Do(req)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	// v2 userinfo names the subject "id".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	if info.Sub == "" {
		return googleUserInfo{}, errors.New("userinfo without subject")
	}
	return info, nil
}

// stateStore holds single-use OAuth state values until they expire.
type stateStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	expires map[string]time.Time
}

func newStateStore(ttl time.Duration) *stateStore {
	return &stateStore{ttl: ttl, now: time.Now, expires: map[string]time.Time{}}
}

// issue returns a fresh state and drops any that have expired.
func (s *stateStore) issue() string {
	state := uuid.NewString()
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, exp := range s.expires {
		if now.After(exp) {
			delete(s.expires, k)
		}
	}
	s.expires[state] = now.Add(s.ttl)
	return state
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.expires[state]
	delete(s.expires, state)
	s.mu.Unlock()
	return ok && !s.now().After(exp)
}

func (s *stateStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
