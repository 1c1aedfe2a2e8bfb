package identity

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
	"github.com/weiawesome/wes-io-live/livechat/pkg/jwt"
)

// TokenVerifier is satisfied by *jwt.Verifier.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// TokenProvider derives the viewer from an access token and asks a
// StreamerSource for the streamer. Both lookups run concurrently.
type TokenProvider struct {
	token    string
	verifier TokenVerifier
	streamer StreamerSource
}

func NewTokenProvider(token string, verifier TokenVerifier, streamer StreamerSource) *TokenProvider {
	return &TokenProvider{token: token, verifier: verifier, streamer: streamer}
}

func (p *TokenProvider) Load(ctx context.Context) (domain.Identity, error) {
	var ident domain.Identity
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		claims, err := p.verifier.Verify(p.token)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
		}
		name := claims.Username
		if name == "" {
			name = claims.Email
		}
		ident.User = domain.User{ID: domain.ID(claims.UserID), Name: name}
		return nil
	})

	g.Go(func() error {
		s, err := p.streamer.Streamer(gctx)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
		}
		ident.Streamer = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Identity{}, err
	}
	if err := ident.Validate(); err != nil {
		return domain.Identity{}, err
	}
	return ident, nil
}
