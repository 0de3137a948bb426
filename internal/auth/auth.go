// Package auth guards state-changing HTTP endpoints with EIP-191 signed
// requests from an allow-list of operator addresses.
package auth

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds the body a guarded request may carry.
const MaxBodyBytes = 1 << 16

const (
	HeaderAddress   = "X-Address"
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
)

type NonceCache struct {
	mu     sync.Mutex
	nonces map[string]time.Time
	ttl    time.Duration
	stop   chan struct{}
	once   sync.Once
}

func NewNonceCache(ttl, cleanup time.Duration) *NonceCache {
	cache := &NonceCache{
		nonces: make(map[string]time.Time),
		ttl:    ttl,
		stop:   make(chan struct{}),
	}
	go cache.startCleanup(cleanup)
	return cache
}

func (c *NonceCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			for nonce, seen := range c.nonces {
				if time.Since(seen) > c.ttl {
					delete(c.nonces, nonce)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Use records nonce and reports false if it was already used within the TTL.
func (c *NonceCache) Use(nonce string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seen, ok := c.nonces[nonce]; ok && time.Since(seen) <= c.ttl {
		return false
	}
	c.nonces[nonce] = time.Now()
	return true
}

func (c *NonceCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// MessageHash is the EIP-191 hash an operator signs for a request:
// "<sha256(body) hex>.<unix timestamp>.<nonce>".
func MessageHash(body []byte, timestamp, nonce string) []byte {
	bodyHash := sha256.Sum256(body)
	return accounts.TextHash([]byte(fmt.Sprintf("%x.%s.%s", bodyHash, timestamp, nonce)))
}

// Recover returns the address that produced signature over hash. Both 0/1 and
// 27/28 recovery ids are accepted.
func Recover(signature, hash []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}
	sig := make([]byte, len(signature))
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignRequest sets the auth headers on req for body.
func SignRequest(req *http.Request, body []byte, key *ecdsa.PrivateKey, nonce string, now time.Time) error {
	timestamp := strconv.FormatInt(now.Unix(), 10)
	signature, err := crypto.Sign(MessageHash(body, timestamp, nonce), key)
	if err != nil {
		return err
	}
	req.Header.Set(HeaderAddress, crypto.PubkeyToAddress(key.PublicKey).Hex())
	req.Header.Set(HeaderSignature, hex.EncodeToString(signature))
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderNonce, nonce)
	return nil
}

// Guard admits requests signed by one of its operators.
type Guard struct {
	operators map[common.Address]struct{}
	nonces    *NonceCache
	window    time.Duration
	log       *zap.Logger
}

// NewGuard returns a guard for operators. window bounds both the accepted
// clock skew and how long nonces are remembered.
func NewGuard(operators []string, window time.Duration, logger *zap.Logger) (*Guard, error) {
	g := &Guard{
		operators: make(map[common.Address]struct{}, len(operators)),
		window:    window,
		log:       logger.Named("auth"),
	}
	for _, op := range operators {
		if !common.IsHexAddress(op) {
			return nil, fmt.Errorf("invalid operator address: %s", op)
		}
		g.operators[common.HexToAddress(op)] = struct{}{}
	}
	if len(g.operators) > 0 {
		g.nonces = NewNonceCache(window, window)
	}
	return g, nil
}

// Enabled is false when no operators are configured; the guard then admits every request.
func (g *Guard) Enabled() bool {
	return len(g.operators) > 0
}

func (g *Guard) Close() {
	if g.nonces != nil {
		g.nonces.Close()
	}
}

func (g *Guard) Middleware(next http.Handler) http.Handler {
	if !g.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addressStr := r.Header.Get(HeaderAddress)
		if !common.IsHexAddress(addressStr) {
			g.log.Warn("missing or invalid X-Address header")
			http.Error(w, "missing X-Address header", http.StatusUnauthorized)
			return
		}
		address := common.HexToAddress(addressStr)
		if _, ok := g.operators[address]; !ok {
			g.log.Warn("address is not an operator", zap.String("address", address.Hex()))
			http.Error(w, "not an operator", http.StatusUnauthorized)
			return
		}

		signature, err := hex.DecodeString(strings.TrimPrefix(r.Header.Get(HeaderSignature), "0x"))
		if err != nil || len(signature) != crypto.SignatureLength {
			g.log.Warn("invalid X-Signature header", zap.Error(err))
			http.Error(w, "invalid X-Signature header", http.StatusBadRequest)
			return
		}

		timestampStr := r.Header.Get(HeaderTimestamp)
		timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid X-Timestamp header", http.StatusBadRequest)
			return
		}
		if skew := time.Since(time.Unix(timestamp, 0)); skew > g.window || skew < -g.window {
			g.log.Warn("stale request", zap.Duration("skew", skew))
			http.Error(w, "stale request", http.StatusUnauthorized)
			return
		}

		nonce := r.Header.Get(HeaderNonce)
		if nonce == "" {
			http.Error(w, "missing X-Nonce header", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				g.log.Warn("request body too large", zap.Int64("limit", tooLarge.Limit))
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			g.log.Error("failed to read request body", zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		signer, err := Recover(signature, MessageHash(body, timestampStr, nonce))
		if err != nil || signer != address {
			g.log.Warn("invalid signature", zap.String("address", address.Hex()), zap.Error(err))
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		if !g.nonces.Use(nonce) {
			g.log.Warn("nonce already used", zap.String("nonce", nonce))
			http.Error(w, "nonce already used", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
