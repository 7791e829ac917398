package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/tokopos/terminal-api/pkg/auth"
	"github.com/tokopos/terminal-api/pkg/config"
	"github.com/tokopos/terminal-api/pkg/enums"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

type upstreamAuthenticator interface {
	Login(ctx context.Context, req upstream.LoginRequest) (*upstream.LoginResult, error)
}

type sessionWriter interface {
	Create(ctx context.Context, sessionID, upstreamToken string) error
	Revoke(ctx context.Context, sessionID string) error
}

// LoginInput carries the cashier credentials from the terminal.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput is the minted terminal session.
type LoginOutput struct {
	AccessToken string          `json:"access_token"`
	CashierName string          `json:"cashier_name"`
	Role        enums.ActorRole `json:"role"`
}

// Service proxies cashier authentication to the upstream backend and mints
// the terminal's own JWT tied to a Redis session.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	Logout(ctx context.Context, sessionID string) error
}

type service struct {
	upstream upstreamAuthenticator
	sessions sessionWriter
	jwtCfg   config.JWTConfig
	clock    func() time.Time
}

// NewService builds the auth service.
func NewService(authenticator upstreamAuthenticator, sessions sessionWriter, jwtCfg config.JWTConfig) (Service, error) {
	if authenticator == nil {
		return nil, fmt.Errorf("upstream authenticator required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session writer required")
	}
	return &service{
		upstream: authenticator,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		clock:    time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	result, err := s.upstream.Login(ctx, upstream.LoginRequest{Username: username, Password: input.Password})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "upstream login returned no token")
	}

	role, roleErr := enums.ParseActorRole(result.Role)
	if roleErr != nil {
		role = enums.RoleCashier
	}
	name := strings.TrimSpace(result.Name)
	if name == "" {
		name = username
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Create(ctx, sessionID, result.Token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.clock(), pkgauth.AccessTokenPayload{
		CashierName: name,
		Role:        role,
		JTI:         sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &LoginOutput{
		AccessToken: accessToken,
		CashierName: name,
		Role:        role,
	}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
