package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/config"
	"github.com/trust-protocol/trust-client/internal/ens"
	"github.com/trust-protocol/trust-client/internal/keys"
	"github.com/trust-protocol/trust-client/internal/wallet"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("../../fixtures/tests/config/valid_config.yaml")
	require.NoError(t, err)

	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	cfg.Server.ListenPort = port
	cfg.MiniApp.HostURL = ""
	return cfg
}

func TestApp_StartStop(t *testing.T) {
	cfg := testConfig(t)
	home := t.TempDir()

	var w wallet.Wallet
	app := fxtest.New(t,
		Options(cfg, Params{Home: home}, zap.NewNop()),
		fx.Populate(&w),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.IsType(t, wallet.Disconnected{}, w)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/miniapp", cfg.Server.ListenPort))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, true, state["isInitialized"])
	assert.Equal(t, false, state["isMiniApp"])
}

func TestApp_InjectedWallet(t *testing.T) {
	cfg := testConfig(t)
	home := t.TempDir()
	address, err := keys.GenerateKeyFile(filepath.Join(home, cfg.Wallet.Keyfile))
	require.NoError(t, err)

	var w wallet.Wallet
	var resolver ens.Resolver
	app := fxtest.New(t,
		Options(cfg, Params{Home: home}, zap.NewNop()),
		fx.Populate(&w, &resolver),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.IsType(t, &wallet.KeyfileWallet{}, w)
	account, err := w.Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, address, account.Address)
	assert.IsType(t, &ens.Client{}, resolver)
}

func TestNewResolver_Disabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.ENS.RpcProvider = ""

	lc := fxtest.NewLifecycle(t)
	resolver, err := NewResolver(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ens.Disabled{}, resolver)
}
