package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/arturoeanton/go-module-pack/internal/domain"
	"github.com/arturoeanton/go-module-pack/internal/port"
)

const (
	// DefaultGitHubAPIURL is the GitHub REST API base; the verifier calls {base}/user.
	DefaultGitHubAPIURL = "https://api.github.com"

	defaultSubject = "github_user"

	// GitHub allows 5,000 requests/hour per token; the local limit only guards
	// against a flood of bogus tokens.
	verifyRate  = 50
	verifyBurst = 100

	maxProfileSize = 64 * 1024
)

// GitHubVerifier implements port.TokenVerifier against GitHub's user-info endpoint.
// A token is accepted when GET /user answers 200.
type GitHubVerifier struct {
	apiURL      string
	clientID    string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// GitHubOption configures a GitHubVerifier.
type GitHubOption func(*GitHubVerifier)

// WithRateLimit overrides the local verification rate limit.
func WithRateLimit(perSecond float64, burst int) GitHubOption {
	return func(g *GitHubVerifier) {
		g.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewGitHubVerifier creates a verifier. apiURL defaults to DefaultGitHubAPIURL;
// clientID is the OAuth app id reported on verified identities.
func NewGitHubVerifier(apiURL, clientID string, logger *slog.Logger, opts ...GitHubOption) *GitHubVerifier {
	if apiURL == "" {
		apiURL = DefaultGitHubAPIURL
	}
	g := &GitHubVerifier{
		apiURL:      strings.TrimRight(apiURL, "/"),
		clientID:    clientID,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		rateLimiter: rate.NewLimiter(verifyRate, verifyBurst),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Verify validates token by fetching the GitHub profile it belongs to.
// Every failure collapses to port.ErrUnauthorized; the reason is only logged.
func (g *GitHubVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, port.ErrUnauthorized
	}

	if err := g.rateLimiter.Wait(ctx); err != nil {
		g.logger.Warn("auth rate limit wait failed", "error", err)
		return nil, port.ErrUnauthorized
	}

	claims, err := g.fetchProfile(ctx, token)
	if err != nil {
		g.logger.Info("auth failed", "error", err)
		return nil, port.ErrUnauthorized
	}

	subject, _ := claims["login"].(string)
	if subject == "" {
		subject = defaultSubject
	}

	return &domain.Identity{
		Subject:  subject,
		ClientID: g.clientID,
		Scopes:   []string{domain.ScopeUser},
		Claims:   claims,
	}, nil
}

// fetchProfile calls GET /user with the bearer token.
func (g *GitHubVerifier) fetchProfile(ctx context.Context, token string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("github: create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: fetch profile: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileSize))
	if err != nil {
		return nil, fmt.Errorf("github: read profile: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: profile fetch failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var profile map[string]any
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("github: decode profile: %w", err)
	}
	return profile, nil
}
