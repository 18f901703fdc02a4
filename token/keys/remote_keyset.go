package keys

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/zestacademy/zestcompilers/internal/errors"
)

// RemoteKeySetVerifier verifies signatures with go-oidc's remote key set,
// which caches keys and refetches when a token names an unknown kid.
type RemoteKeySetVerifier struct {
	keySet *oidc.RemoteKeySet
}

func NewRemoteKeySetVerifier(ctx context.Context, jwksURL string, client *http.Client) *RemoteKeySetVerifier {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	return &RemoteKeySetVerifier{keySet: oidc.NewRemoteKeySet(ctx, jwksURL)}
}

func (v *RemoteKeySetVerifier) VerifySignature(ctx context.Context, rawToken string) error {
	if _, err := v.keySet.VerifySignature(ctx, rawToken); err != nil {
		// go-oidc prefixes every key set download failure with "fetching keys".
		if strings.HasPrefix(err.Error(), "fetching keys") {
			return fmt.Errorf("%w: %v", errors.ErrUpstream, err)
		}
		return fmt.Errorf("%w: %v", errors.ErrInvalidSignature, err)
	}
	return nil
}
