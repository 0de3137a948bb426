// Package server exposes the root layout, the onboarding form and the
// mini-app state over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/trust-protocol/trust-client/internal/auth"
	"github.com/trust-protocol/trust-client/internal/config"
	"github.com/trust-protocol/trust-client/internal/ens"
	"github.com/trust-protocol/trust-client/internal/metrics"
	"github.com/trust-protocol/trust-client/internal/miniapp"
	"github.com/trust-protocol/trust-client/internal/notify"
	"github.com/trust-protocol/trust-client/internal/onboard"
	"github.com/trust-protocol/trust-client/internal/registry"
	"github.com/trust-protocol/trust-client/internal/wallet"
)

// maxBodyBytes bounds onboarding request bodies, guarded or not.
const maxBodyBytes = auth.MaxBodyBytes

type Deps struct {
	Config   *config.Config
	Chains   *registry.ChainRegistry
	Wallet   wallet.Wallet
	Resolver ens.Resolver
	MiniApp  *miniapp.Bootstrapper
	// Guard, when set, requires operator signatures on POST /api/onboard.
	Guard  *auth.Guard
	Logger *zap.Logger
}

type Server struct {
	deps     Deps
	metadata Metadata
	logger   *zap.Logger
}

func New(deps Deps) *Server {
	return &Server{
		deps:     deps,
		metadata: NewMetadata(deps.Config.Site),
		logger:   deps.Logger.Named("server"),
	}
}

// OnboardRequest is the body of POST /api/onboard.
type OnboardRequest struct {
	Counterparty string `json:"counterparty"`
	Amount       string `json:"amount"`
	CreateBond   bool   `json:"createBond"`
}

// OnboardResponse carries the result of a submission together with the
// notifications it produced.
type OnboardResponse struct {
	Result        *onboard.Result       `json:"result,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", metrics.Middleware(http.HandlerFunc(s.handleLayout), "/"))
	mux.Handle("GET /api/metadata", metrics.Middleware(http.HandlerFunc(s.handleMetadata), "/api/metadata"))
	mux.Handle("GET /api/miniapp", metrics.Middleware(http.HandlerFunc(s.handleMiniApp), "/api/miniapp"))
	mux.Handle("GET /api/account", metrics.Middleware(http.HandlerFunc(s.handleAccount), "/api/account"))
	var onboardHandler http.Handler = http.HandlerFunc(s.handleOnboard)
	if s.deps.Guard != nil {
		onboardHandler = s.deps.Guard.Middleware(onboardHandler)
	}
	mux.Handle("POST /api/onboard", metrics.Middleware(onboardHandler, "/api/onboard"))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) newForm(notifier notify.Notifier) *onboard.Form {
	return onboard.NewForm(onboard.Deps{
		Wallet:   s.deps.Wallet,
		Chains:   s.deps.Chains,
		Resolver: s.deps.Resolver,
		Notifier: notifier,
		Decimals: s.deps.Config.TokenDecimals(),
		Logger:   s.logger,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	data := layoutData{
		Metadata: s.metadata,
		Embed:    s.metadata.MiniApp.String(),
		State:    s.deps.MiniApp.Init(r.Context()),
	}
	if account, err := s.deps.Wallet.Account(r.Context()); err == nil && account.Connected {
		data.Account = account.Address.Hex()
	}
	for _, c := range s.deps.Chains.All() {
		data.Chains = append(data.Chains, fmt.Sprintf("%s (%d)", c.Name, c.ID))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layoutTemplate.Execute(w, data); err != nil {
		s.logger.Error("Failed to render layout", zap.Error(err))
	}
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metadata)
}

func (s *Server) handleMiniApp(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.MiniApp.Init(r.Context()))
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	form := s.newForm(&notify.Recorder{})
	snap := form.Open(r.Context())
	form.Close()
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var req OnboardRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Debug("Rejected onboarding request", zap.Error(err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	mode := onboard.ModeRegister
	if req.CreateBond {
		mode = onboard.ModeBond
	}

	// A submission keeps running when the client goes away.
	ctx := context.WithoutCancel(r.Context())

	recorder := &notify.Recorder{}
	form := s.newForm(recorder)
	form.Open(ctx)
	form.SetInput(onboard.Input{Counterparty: req.Counterparty, Amount: req.Amount})
	result, err := form.Submit(ctx, mode)

	status := http.StatusOK
	var validationErr *onboard.ValidationError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusUnprocessableEntity
	case err != nil:
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, OnboardResponse{Result: result, Notifications: recorder.Notifications()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
