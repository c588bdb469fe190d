package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/localnerve/authorizer-go"
	"github.com/localnerve/shopdb/internal/config"
	"github.com/localnerve/shopdb/internal/utils"
)

// Authorizer validates session cookies against an external authorizer.
// The client is created on first use, once.
type Authorizer struct {
	cfg     *config.Config
	once    sync.Once
	client  *authorizer.AuthorizerClient
	initErr error
}

// NewAuthorizer returns an Authorizer for the configured AUTHZ_URL
func NewAuthorizer(cfg *config.Config) *Authorizer {
	return &Authorizer{cfg: cfg}
}

func (a *Authorizer) init(origin string) error {
	a.once.Do(func() {
		if err := utils.PingAuthorizer(a.cfg.AuthzURL); err != nil {
			a.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			a.cfg.AuthzURL, a.cfg.AuthzClientID, origin)

		client, err := authorizer.NewAuthorizerClient(a.cfg.AuthzClientID, a.cfg.AuthzURL, origin, nil)
		if err != nil {
			a.initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		a.client = client
	})
	return a.initErr
}

// ValidateSession validates a session cookie for the given roles. origin is the
// protocol and host of the calling request, used as the redirect url on first use.
func (a *Authorizer) ValidateSession(origin, cookie string, roles []string) (map[string]interface{}, error) {
	if err := a.init(origin); err != nil {
		return nil, err
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := a.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	return map[string]interface{}{
		"is_valid": res.IsValid,
		"user":     res.User,
	}, nil
}
