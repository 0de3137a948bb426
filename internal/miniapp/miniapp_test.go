package miniapp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/config"
	"github.com/trust-protocol/trust-client/internal/miniapp"
	mocks "github.com/trust-protocol/trust-client/mocks/miniapp"
)

func TestBootstrapper_Embedded(t *testing.T) {
	host := mocks.NewMockHost(t)
	host.On("IsInMiniApp", mock.Anything).Return(true, nil).Once()
	host.On("Ready", mock.Anything).Return(nil).Once()

	b := miniapp.NewBootstrapper(host, zap.NewNop())
	assert.False(t, b.State().Initialized)

	state := b.Init(context.Background())
	assert.Equal(t, miniapp.State{Initialized: true, IsMiniApp: true}, state)

	// second call does not reach the host again
	assert.Equal(t, state, b.Init(context.Background()))
}

func TestBootstrapper_NotEmbedded(t *testing.T) {
	host := mocks.NewMockHost(t)
	host.On("IsInMiniApp", mock.Anything).Return(false, nil).Once()

	state := miniapp.NewBootstrapper(host, zap.NewNop()).Init(context.Background())
	assert.True(t, state.Initialized)
	assert.False(t, state.IsMiniApp)
	assert.NoError(t, state.Err)
	host.AssertNotCalled(t, "Ready", mock.Anything)
}

func TestBootstrapper_Failures(t *testing.T) {
	t.Run("detection fails", func(t *testing.T) {
		host := mocks.NewMockHost(t)
		detectErr := errors.New("host unreachable")
		host.On("IsInMiniApp", mock.Anything).Return(false, detectErr).Once()

		state := miniapp.NewBootstrapper(host, zap.NewNop()).Init(context.Background())
		assert.True(t, state.Initialized)
		assert.False(t, state.IsMiniApp)
		assert.ErrorIs(t, state.Err, detectErr)
	})

	t.Run("ready fails", func(t *testing.T) {
		host := mocks.NewMockHost(t)
		readyErr := errors.New("rejected")
		host.On("IsInMiniApp", mock.Anything).Return(true, nil).Once()
		host.On("Ready", mock.Anything).Return(readyErr).Once()

		state := miniapp.NewBootstrapper(host, zap.NewNop()).Init(context.Background())
		assert.True(t, state.Initialized)
		assert.True(t, state.IsMiniApp)
		assert.ErrorIs(t, state.Err, readyErr)
	})
}

func TestBootstrapper_ConcurrentInit(t *testing.T) {
	host := mocks.NewMockHost(t)
	host.On("IsInMiniApp", mock.Anything).Return(true, nil).Once()
	host.On("Ready", mock.Anything).Return(nil).Once()

	b := miniapp.NewBootstrapper(host, zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Init(context.Background())
		}()
	}
	wg.Wait()
	assert.True(t, b.State().IsMiniApp)
}

func TestState_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(miniapp.State{Initialized: true, Err: errors.New("boom")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isInitialized":true,"isMiniApp":false,"error":"boom"}`, string(data))
}

func TestHTTPHost(t *testing.T) {
	var readyCalls atomic.Int32
	var embedded atomic.Bool
	embedded.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == miniapp.ContextPath:
			if !embedded.Load() {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(`{"client":{"clientFid":1}}`))
		case r.Method == http.MethodPost && r.URL.Path == miniapp.ReadyPath:
			readyCalls.Add(1)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	host := miniapp.NewHTTPHost(server.URL+"/", time.Second, zap.NewNop())

	ok, err := host.IsInMiniApp(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, host.Ready(context.Background()))
	assert.Equal(t, int32(1), readyCalls.Load())

	embedded.Store(false)
	ok, err = host.IsInMiniApp(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPHost_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	host := miniapp.NewHTTPHost(server.URL, time.Second, zap.NewNop())
	_, err := host.IsInMiniApp(context.Background())
	assert.ErrorContains(t, err, "502")

	err = host.Ready(context.Background())
	assert.ErrorContains(t, err, "nope")
}

func TestHTTPHost_NoHostConfigured(t *testing.T) {
	host := miniapp.NewHTTPHost("", time.Second, zap.NewNop())
	ok, err := host.IsInMiniApp(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewEmbed(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	embed := miniapp.NewEmbed(cfg.Site)
	assert.JSONEq(t, `{
		"version": "1",
		"imageUrl": "/trust_hero.svg",
		"button": {
			"title": "Launch Trust Protocol",
			"action": {
				"type": "launch_miniapp",
				"name": "Trust Protocol",
				"splashImageUrl": "/trust_hero.svg",
				"splashBackgroundColor": "#cdffd8"
			}
		}
	}`, embed.String())
}
