package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"anoa.com/kudoswall/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const svg = `<svg xmlns="http://www.w3.org/2000/svg"></svg>`

func TestDecodeOptions(t *testing.T) {
	opts := entity.AvatarOptions{Face: 3, Hair: 12, Flip: 1, Color: "#FFEEDD", Shape: "square"}
	raw, err := json.Marshal(opts)
	require.NoError(t, err)

	for name, encoded := range map[string]string{
		"raw url":    EncodeOptions(opts),
		"padded url": base64.URLEncoding.EncodeToString(raw),
		"std":        base64.StdEncoding.EncodeToString(raw),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeOptions(encoded)
			require.NoError(t, err)
			assert.Equal(t, opts, got)
		})
	}

	bad := map[string]string{
		"empty":         "",
		"not base64":    "%%%",
		"not json":      base64.RawURLEncoding.EncodeToString([]byte("hello")),
		"negative face": base64.RawURLEncoding.EncodeToString([]byte(`{"face":-1}`)),
		"flip two":      base64.RawURLEncoding.EncodeToString([]byte(`{"flip":2}`)),
		"bad shape":     base64.RawURLEncoding.EncodeToString([]byte(`{"shape":"hexagon"}`)),
	}
	for name, encoded := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOptions(encoded)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
}

func TestAvatarService_Render(t *testing.T) {
	ctx := context.Background()
	encoded := EncodeOptions(entity.DefaultAvatarOptions())

	t.Run("Posts options upstream", func(t *testing.T) {
		var got entity.AvatarOptions
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			_, _ = w.Write([]byte(svg))
		}))
		defer upstream.Close()

		svc := NewAvatarService(Config{UpstreamURL: upstream.URL, MaxRetries: 2}, nil, zap.NewNop())
		out, err := svc.Render(ctx, encoded)

		require.NoError(t, err)
		assert.Equal(t, svg, string(out))
		assert.Equal(t, entity.DefaultAvatarOptions(), got)
	})

	t.Run("Retries server errors", func(t *testing.T) {
		var calls int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(svg))
		}))
		defer upstream.Close()

		svc := NewAvatarService(Config{UpstreamURL: upstream.URL, MaxRetries: 3, InitialInterval: time.Millisecond}, nil, zap.NewNop())
		out, err := svc.Render(ctx, encoded)

		require.NoError(t, err)
		assert.Equal(t, svg, string(out))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("Gives up as bad gateway", func(t *testing.T) {
		var calls int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		svc := NewAvatarService(Config{UpstreamURL: upstream.URL, MaxRetries: 2, InitialInterval: time.Millisecond}, nil, zap.NewNop())
		_, err := svc.Render(ctx, encoded)

		assert.ErrorIs(t, err, apperror.ErrUpstream)
		assert.Equal(t, http.StatusBadGateway, apperror.MapErrorToStatus(err))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("Client errors are not retried", func(t *testing.T) {
		var calls int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer upstream.Close()

		svc := NewAvatarService(Config{UpstreamURL: upstream.URL, MaxRetries: 5, InitialInterval: time.Millisecond}, nil, zap.NewNop())
		_, err := svc.Render(ctx, encoded)

		assert.ErrorIs(t, err, apperror.ErrUpstream)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("Oversized body is rejected", func(t *testing.T) {
		var calls int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			_, _ = w.Write([]byte("<svg>" + strings.Repeat("a", maxSVGBytes) + "</svg>"))
		}))
		defer upstream.Close()

		svc := NewAvatarService(Config{UpstreamURL: upstream.URL, MaxRetries: 3, InitialInterval: time.Millisecond}, nil, zap.NewNop())
		out, err := svc.Render(ctx, encoded)

		assert.ErrorIs(t, err, apperror.ErrUpstream)
		assert.Nil(t, out)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("Body at the limit is accepted", func(t *testing.T) {
		body := strings.Repeat("a", maxSVGBytes)
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		defer upstream.Close()

		svc := NewAvatarService(Config{UpstreamURL: upstream.URL, MaxRetries: 1}, nil, zap.NewNop())
		out, err := svc.Render(ctx, encoded)

		require.NoError(t, err)
		assert.Len(t, out, maxSVGBytes)
	})

	t.Run("Bad options never reach upstream", func(t *testing.T) {
		svc := NewAvatarService(Config{UpstreamURL: "http://127.0.0.1:1"}, nil, zap.NewNop())
		_, err := svc.Render(ctx, "!!!")

		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}
