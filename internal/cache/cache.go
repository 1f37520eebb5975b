// Package cache stores finished analyses so that identical descriptions do
// not pay for a second model call. Only text without personal data is ever
// cached; callers enforce that before they build a key.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Skufu/symptomgate/internal/logging"
	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache: miss")

const (
	DefaultPrefix = "symptomgate:analysis:"
	DefaultTTL    = 10 * time.Minute
	// DefaultLoadTimeout bounds a shared load once it is detached from the
	// caller that started it.
	DefaultLoadTimeout = 30 * time.Second
)

// ResultCache is the lookup surface used by the pipeline.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	// GetOrLoad returns the cached value or runs loader once per key across
	// concurrent callers and stores its result. hit reports whether the value
	// came from the cache. The loader's context outlives the caller that
	// started it so the other waiters are not failed by its cancellation.
	GetOrLoad(ctx context.Context, key string, dest interface{}, loader func(ctx context.Context) (interface{}, error)) (hit bool, err error)
	Ping(ctx context.Context) error
}

// Key derives the cache key for a description in a locale.
func Key(locale, text string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(locale))))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(h.Sum(nil))
}

// Connect opens a client from a redis:// URL and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "ping redis")
	}
	return client, nil
}

// Redis implements ResultCache on go-redis.
type Redis struct {
	client      *redis.Client
	logger      logging.Logger
	prefix      string
	ttl         time.Duration
	loadTimeout time.Duration
	jitter      func(time.Duration) time.Duration
	group       singleflight.Group
}

type Option func(*Redis)

func WithPrefix(prefix string) Option {
	return func(r *Redis) { r.prefix = prefix }
}

func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLoadTimeout bounds a shared load. Pass the analyzer timeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Redis) {
		if d > 0 {
			r.loadTimeout = d
		}
	}
}

// NewRedis wraps client.
func NewRedis(client *redis.Client, logger logging.Logger, opts ...Option) *Redis {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	r := &Redis{
		client:      client,
		logger:      logger.Named("cache"),
		prefix:      DefaultPrefix,
		ttl:         DefaultTTL,
		loadTimeout: DefaultLoadTimeout,
		jitter:      jitterTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// jitterTTL spreads expiry by +/- 10% so entries written together do not
// expire together.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	j := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(j)
}

func (r *Redis) fullKey(key string) string { return r.prefix + key }

func (r *Redis) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "cache get")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "cache decode")
	}
	return nil
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "cache encode")
	}
	if err := r.client.Set(ctx, r.fullKey(key), data, r.jitter(r.ttl)).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "cache set")
	}
	return nil
}

// GetOrLoad treats a failing cache as a miss: the analysis still runs and
// the failure is only logged.
func (r *Redis) GetOrLoad(ctx context.Context, key string, dest interface{}, loader func(ctx context.Context) (interface{}, error)) (bool, error) {
	err := r.Get(ctx, key, dest)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn("cache lookup failed", logging.Err(err))
	}

	val, err, _ := r.group.Do(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()

		v, loadErr := loader(lctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := r.Set(lctx, key, v); setErr != nil {
			r.logger.Warn("cache store failed", logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return false, err
	}
	return false, copyValue(val, dest)
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Nop never stores anything; GetOrLoad always runs the loader.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) error { return ErrMiss }
func (Nop) Set(context.Context, string, interface{}) error { return nil }
func (Nop) Ping(context.Context) error                     { return nil }

func (Nop) GetOrLoad(ctx context.Context, _ string, dest interface{}, loader func(ctx context.Context) (interface{}, error)) (bool, error) {
	v, err := loader(ctx)
	if err != nil {
		return false, err
	}
	return false, copyValue(v, dest)
}

// copyValue moves a loaded value into dest through JSON, the same path a
// cache hit takes.
func copyValue(v, dest interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "cache encode")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "cache decode")
	}
	return nil
}
