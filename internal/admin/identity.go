package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

var (
	ErrUserExists       = errors.New("user already registered")
	ErrIdentityRejected = errors.New("identity provider rejected the request")
)

type IdentityConfig struct {
	BaseURL string
	APIKey  string
	// RedirectURL is where invitation links land; empty keeps the provider default.
	RedirectURL string
	Timeout     time.Duration
}

// IdentityUser is the part of the provider's user object we keep.
type IdentityUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentityClient talks to the hosted auth admin REST API with the service key.
type IdentityClient struct {
	config IdentityConfig
	client *fasthttp.Client
}

func NewIdentityClient(config IdentityConfig) *IdentityClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &IdentityClient{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}
}

type inviteBody struct {
	Email      string            `json:"email"`
	Data       map[string]string `json:"data,omitempty"`
	RedirectTo string            `json:"redirect_to,omitempty"`
}

type createUserBody struct {
	Email        string            `json:"email"`
	Password     string            `json:"password"`
	EmailConfirm bool              `json:"email_confirm"`
	UserMetadata map[string]string `json:"user_metadata,omitempty"`
}

// Invite sends an invitation e-mail and returns the pending user.
func (c *IdentityClient) Invite(ctx context.Context, email, fullName string) (IdentityUser, error) {
	body, err := json.Marshal(inviteBody{
		Email:      email,
		Data:       metadata(fullName),
		RedirectTo: c.config.RedirectURL,
	})
	if err != nil {
		return IdentityUser{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.post(ctx, "/auth/v1/invite", body)
}

// CreateUser registers a confirmed user with a password.
func (c *IdentityClient) CreateUser(ctx context.Context, email, password, fullName string) (IdentityUser, error) {
	body, err := json.Marshal(createUserBody{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: metadata(fullName),
	})
	if err != nil {
		return IdentityUser{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.post(ctx, "/auth/v1/admin/users", body)
}

func (c *IdentityClient) post(ctx context.Context, path string, body []byte) (IdentityUser, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("apikey", c.config.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	start := time.Now()
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return IdentityUser{}, fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	log.Debug().
		Str("path", path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("identity provider called")

	switch {
	case status == fasthttp.StatusConflict || status == fasthttp.StatusUnprocessableEntity:
		return IdentityUser{}, fmt.Errorf("%w: %s", ErrUserExists, resp.Body())
	case status < 200 || status >= 300:
		return IdentityUser{}, fmt.Errorf("%w: status %d: %s", ErrIdentityRejected, status, resp.Body())
	}

	var user IdentityUser
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return IdentityUser{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if user.ID == "" {
		return IdentityUser{}, fmt.Errorf("%w: response carries no user id", ErrIdentityRejected)
	}
	return user, nil
}

func metadata(fullName string) map[string]string {
	if fullName == "" {
		return nil
	}
	return map[string]string{"full_name": fullName}
}
