package miniapp

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/metrics"
)

// State is the outcome of the bootstrap. Initialized is true once Init has
// run, whether or not detection succeeded.
type State struct {
	Initialized bool
	IsMiniApp   bool
	Err         error
}

func (s State) MarshalJSON() ([]byte, error) {
	out := struct {
		Initialized bool   `json:"isInitialized"`
		IsMiniApp   bool   `json:"isMiniApp"`
		Error       string `json:"error,omitempty"`
	}{Initialized: s.Initialized, IsMiniApp: s.IsMiniApp}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}

// Bootstrapper runs detection and the ready signal at most once per process.
type Bootstrapper struct {
	host   Host
	logger *zap.Logger

	once  sync.Once
	mu    sync.RWMutex
	state State
}

func NewBootstrapper(host Host, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{host: host, logger: logger.Named("miniapp")}
}

// Init detects the host and, when embedded, tells it the client is ready.
// Failures are logged and kept in State.Err; they never prevent startup.
func (b *Bootstrapper) Init(ctx context.Context) State {
	b.once.Do(func() {
		state := State{Initialized: true}

		embedded, err := b.host.IsInMiniApp(ctx)
		if err != nil {
			b.logger.Error("Failed to detect mini-app host", zap.Error(err))
			state.Err = err
		} else if embedded {
			state.IsMiniApp = true
			if err := b.host.Ready(ctx); err != nil {
				b.logger.Error("Failed to signal ready to mini-app host", zap.Error(err))
				state.Err = err
			} else {
				b.logger.Info("Mini-app ready signal sent")
			}
		}

		if state.IsMiniApp {
			metrics.MiniAppEmbedded.Set(1)
		} else {
			metrics.MiniAppEmbedded.Set(0)
		}

		b.mu.Lock()
		b.state = state
		b.mu.Unlock()
	})
	return b.State()
}

func (b *Bootstrapper) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}
