package client

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/hablemosverde/verde/internal/client/repositories/kvstore"
	"github.com/hablemosverde/verde/internal/common"
)

// emptyCookieFallback is what the store holds after a sign out.
var emptyCookieFallback = []byte("[]")

// ParseCookieFallback decodes the persisted backend session marker. ok is
// false when the marker is missing, null, an empty collection, or malformed;
// all of these mean "no backend session".
func ParseCookieFallback(raw []byte) (cookies map[string]string, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, emptyCookieFallback) {
		return nil, false
	}
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, false
	}
	if len(cookies) == 0 {
		return nil, false
	}
	return cookies, true
}

// sessionToken returns the stored session secret, or "" if there is none.
func sessionToken(ctx context.Context, store kvstore.Repository) (string, error) {
	raw, err := store.Get(ctx, common.KeyCookieFallback)
	if err != nil {
		return "", err
	}
	cookies, ok := ParseCookieFallback(raw)
	if !ok {
		return "", nil
	}
	return cookies[common.SessionCookieName], nil
}

func saveSessionToken(ctx context.Context, store kvstore.Repository, token string) error {
	b, err := json.Marshal(map[string]string{common.SessionCookieName: token})
	if err != nil {
		return err
	}
	return store.Set(ctx, common.KeyCookieFallback, b)
}

func clearSessionToken(ctx context.Context, store kvstore.Repository) error {
	return store.Set(ctx, common.KeyCookieFallback, emptyCookieFallback)
}
