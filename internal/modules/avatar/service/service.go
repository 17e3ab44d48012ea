package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"anoa.com/kudoswall/pkg/apperror"
	"anoa.com/kudoswall/pkg/validator"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxSVGBytes = 1 << 20

var errUpstream = apperror.New(http.StatusBadGateway, "failed to generate avatar", apperror.ErrUpstream)

// EncodeOptions renders opts as the unpadded base64url path segment of /api/avatar/:options.
func EncodeOptions(opts entity.AvatarOptions) string {
	raw, _ := json.Marshal(opts)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeOptions accepts base64url or standard base64, with or without padding.
func DecodeOptions(encoded string) (entity.AvatarOptions, error) {
	var opts entity.AvatarOptions

	encoded = strings.TrimRight(strings.TrimSpace(encoded), "=")
	if encoded == "" {
		return opts, apperror.Validation("missing avatar options")
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return opts, apperror.Validation("avatar options are not valid base64")
	}

	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, apperror.Validation("avatar options are not valid JSON")
	}
	if err := validator.Struct(opts); err != nil {
		return opts, apperror.Validation(validator.FormatValidationError(err))
	}
	return opts, nil
}

type AvatarService interface {
	// Render returns the SVG for the encoded options.
	Render(ctx context.Context, encoded string) ([]byte, error)
}

type Config struct {
	UpstreamURL     string
	MaxRetries      int
	CacheTTL        time.Duration
	InitialInterval time.Duration
	HTTPClient      *http.Client
}

type avatarService struct {
	cfg   Config
	cache *redis.Client
	log   *zap.Logger
}

// NewAvatarService builds the proxy. A nil redis client disables caching.
func NewAvatarService(cfg Config, cache *redis.Client, log *zap.Logger) AvatarService {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = backoff.DefaultInitialInterval
	}
	return &avatarService{cfg: cfg, cache: cache, log: log.Named("avatar")}
}

func cacheKey(body []byte) string {
	sum := sha256.Sum256(body)
	return "avatar:svg:" + hex.EncodeToString(sum[:])
}

func (s *avatarService) Render(ctx context.Context, encoded string) ([]byte, error) {
	opts, err := DecodeOptions(encoded)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode avatar options: %w", err)
	}
	key := cacheKey(body)

	if s.cache != nil {
		svg, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			return svg, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("avatar cache read failed", zap.Error(err))
		}
	}

	svg, err := s.fetch(ctx, body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, svg, s.cfg.CacheTTL).Err(); err != nil {
			s.log.Warn("avatar cache write failed", zap.Error(err))
		}
	}
	return svg, nil
}

func (s *avatarService) fetch(ctx context.Context, body []byte) ([]byte, error) {
	var svg []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.UpstreamURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.cfg.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("avatar upstream responded with %d", resp.StatusCode)
			if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}

		svg, err = io.ReadAll(io.LimitReader(resp.Body, maxSVGBytes+1))
		if err != nil {
			return err
		}
		if len(svg) > maxSVGBytes {
			svg = nil
			return backoff.Permanent(fmt.Errorf("avatar upstream body exceeds %d bytes", maxSVGBytes))
		}
		if len(bytes.TrimSpace(svg)) == 0 {
			return errors.New("avatar upstream returned an empty body")
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval
	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxRetries)), ctx),
		func(err error, d time.Duration) {
			s.log.Warn("avatar upstream attempt failed", zap.Error(err), zap.Duration("backoff", d))
		},
	)
	if err != nil {
		s.log.Error("avatar upstream failed", zap.Int("max_retries", s.cfg.MaxRetries), zap.Error(err))
		return nil, errUpstream
	}
	return svg, nil
}
