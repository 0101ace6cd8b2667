package kv

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// GetJSON decodes the value under key into v. It reports false when the key
// is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	b, err := s.Get(ctx, key)
	if err != nil || b == nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode kv[%s]: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode kv[%s]: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// GetBool treats an absent or unparsable value as false.
func GetBool(ctx context.Context, s Store, key string) (bool, error) {
	b, err := s.Get(ctx, key)
	if err != nil || b == nil {
		return false, err
	}
	v, perr := strconv.ParseBool(string(b))
	if perr != nil {
		return false, nil
	}
	return v, nil
}

func SetBool(ctx context.Context, s Store, key string, v bool) error {
	return s.Set(ctx, key, []byte(strconv.FormatBool(v)))
}

// GetTime reads an RFC 3339 timestamp; ok is false when absent.
func GetTime(ctx context.Context, s Store, key string) (t time.Time, ok bool, err error) {
	b, err := s.Get(ctx, key)
	if err != nil || b == nil {
		return time.Time{}, false, err
	}
	t, err = time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decode kv[%s]: %w", key, err)
	}
	return t, true, nil
}

func SetTime(ctx context.Context, s Store, key string, t time.Time) error {
	return s.Set(ctx, key, []byte(t.UTC().Format(time.RFC3339Nano)))
}
