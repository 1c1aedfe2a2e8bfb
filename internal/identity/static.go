package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

// StaticProvider serves a fixed identity, typically read from a fixture file
// shaped {"user": {"id", "name"}, "streamer": {"id", "name"}}.
type StaticProvider struct {
	identity domain.Identity
}

func NewStaticProvider(ident domain.Identity) *StaticProvider {
	return &StaticProvider{identity: ident}
}

// LoadFixture reads the fixture once; the file is not watched.
func LoadFixture(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read fixture: %v", domain.ErrIdentityUnavailable, err)
	}

	var ident domain.Identity
	if err := json.Unmarshal(data, &ident); err != nil {
		return nil, fmt.Errorf("%w: failed to parse fixture: %v", domain.ErrIdentityUnavailable, err)
	}
	if err := ident.Validate(); err != nil {
		return nil, err
	}
	return NewStaticProvider(ident), nil
}

func (p *StaticProvider) Load(ctx context.Context) (domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Identity{}, err
	}
	return p.identity, nil
}
