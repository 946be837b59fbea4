package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/classroom/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Scopes requested during the consent flow. Read-only everywhere: the
// service never mutates Classroom, Calendar or Drive state.
var Scopes = []string{
	"https://www.googleapis.com/auth/classroom.courses.readonly",
	"https://www.googleapis.com/auth/classroom.courseworkmaterials.readonly",
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// TokenUpdateFunc is invoked whenever the underlying token source refreshes
// the access token, so the caller can persist the new credentials.
type TokenUpdateFunc func(*oauth2.Token) error

// Service builds authenticated Google API clients for a stored user token.
type Service struct {
	clientID     string
	clientSecret string
	redirectURI  string

	classroomLimiter *limiter
	driveLimiter     *limiter
	calendarLimiter  *limiter
}

func NewService(clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		clientID:         clientID,
		clientSecret:     clientSecret,
		redirectURI:      redirectURI,
		classroomLimiter: newLimiter(DefaultRateLimits[ServiceClassroom]),
		driveLimiter:     newLimiter(DefaultRateLimits[ServiceDrive]),
		calendarLimiter:  newLimiter(DefaultRateLimits[ServiceCalendar]),
	}
}

// OAuthConfig returns the oauth2 config for the web consent flow.
func (s *Service) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		RedirectURL:  s.redirectURI,
		Scopes:       Scopes,
		Endpoint:     googleoauth.Endpoint,
	}
}

// AuthURL returns the consent URL. Offline access with forced consent so a
// refresh token is issued on every authorization.
func (s *Service) AuthURL(state string) string {
	return s.OAuthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange swaps an authorization code for tokens.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return s.OAuthConfig().Exchange(ctx, code)
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Google] failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

// tokenSource wraps the stored credentials in a refreshing source that
// reports refreshes back through onRefresh.
func (s *Service) tokenSource(ctx context.Context, accessToken, refreshToken string, expiry time.Time, onRefresh TokenUpdateFunc) oauth2.TokenSource {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		Expiry:       expiry,
	}

	src := s.OAuthConfig().TokenSource(ctx, token)
	return &notifyTokenSource{src: src, current: token, callback: onRefresh}
}

// Classroom creates a Classroom API client for the stored credentials.
func (s *Service) Classroom(ctx context.Context, accessToken, refreshToken string, expiry time.Time, onRefresh TokenUpdateFunc) (*classroom.Service, error) {
	ts := s.tokenSource(ctx, accessToken, refreshToken, expiry, onRefresh)
	srv, err := classroom.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create Classroom service: %w", err)
	}
	return srv, nil
}

// Drive creates a Drive API client for the stored credentials.
func (s *Service) Drive(ctx context.Context, accessToken, refreshToken string, expiry time.Time, onRefresh TokenUpdateFunc) (*drive.Service, error) {
	ts := s.tokenSource(ctx, accessToken, refreshToken, expiry, onRefresh)
	srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}
	return srv, nil
}

// Calendar creates a Calendar API client for the stored credentials.
func (s *Service) Calendar(ctx context.Context, accessToken, refreshToken string, expiry time.Time, onRefresh TokenUpdateFunc) (*calendar.Service, error) {
	ts := s.tokenSource(ctx, accessToken, refreshToken, expiry, onRefresh)
	srv, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}
	return srv, nil
}

// WaitClassroom blocks until the Classroom rate limiter permits a call.
func (s *Service) WaitClassroom(ctx context.Context) error { return s.classroomLimiter.wait(ctx) }

// WaitDrive blocks until the Drive rate limiter permits a call.
func (s *Service) WaitDrive(ctx context.Context) error { return s.driveLimiter.wait(ctx) }

// WaitCalendar blocks until the Calendar rate limiter permits a call.
func (s *Service) WaitCalendar(ctx context.Context) error { return s.calendarLimiter.wait(ctx) }

// UserInfo contains the user's basic profile information from Google.
type UserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// UserInfo fetches the profile for an access token.
func (s *Service) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	return GetUserInfo(ctx, accessToken)
}

// GetUserInfo fetches the authenticated user's profile. The email address
// serves as the account identifier across the whole service.
func GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var userInfo UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &userInfo, nil
}
