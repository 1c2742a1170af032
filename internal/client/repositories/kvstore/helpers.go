package kvstore

import (
	"context"
	"strconv"
	"time"

	"github.com/hablemosverde/verde/internal/timex"
)

// GetString reads key as a string; a missing key yields "".
func GetString(ctx context.Context, r Repository, key string) (string, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SetString stores s under key.
func SetString(ctx context.Context, r Repository, key, s string) error {
	return r.Set(ctx, key, []byte(s))
}

// GetMillis reads key as epoch millis. ok is false when the key is missing
// or does not hold an integer.
func GetMillis(ctx context.Context, r Repository, key string) (t time.Time, ok bool, err error) {
	s, err := GetString(ctx, r, key)
	if err != nil || s == "" {
		return time.Time{}, false, err
	}
	ms, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		return time.Time{}, false, nil
	}
	return timex.MillisToTime(ms), true, nil
}

// SetMillis stores t under key as epoch millis.
func SetMillis(ctx context.Context, r Repository, key string, t time.Time) error {
	return SetString(ctx, r, key, strconv.FormatInt(t.UnixMilli(), 10))
}
