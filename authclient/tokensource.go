package authclient

import (
	"github.com/dinekit/dinekit/session"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// storeTokenSource adapts the session store to oauth2.TokenSource so
// standard oauth2 transports can attach the current bearer token. Each
// request reads a fresh snapshot, so a logout is picked up immediately.
type storeTokenSource struct {
	store *session.Store
}

// StoreTokenSource returns an oauth2.TokenSource backed by the session
// store. Token() fails with ErrNotAuthenticated when no session is
// running; it never refreshes.
func StoreTokenSource(store *session.Store) oauth2.TokenSource {
	return &storeTokenSource{store: store}
}

func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	snap := ts.store.Snapshot()
	if !snap.Authenticated || snap.Tokens == nil || snap.Tokens.Access == "" {
		return nil, errors.Wrap(ErrNotAuthenticated, "[StoreTokenSource.Token]")
	}
	return &oauth2.Token{
		AccessToken: snap.Tokens.Access,
		TokenType:   snap.Tokens.Type,
	}, nil
}
