package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	KindSuccess = "success"
	KindError   = "error"
)

// TxNotice describes a confirmed transaction.
type TxNotice struct {
	Hash        common.Hash `json:"hash"`
	ChainID     uint64      `json:"chainId"`
	ExplorerURL string      `json:"explorerUrl,omitempty"`
}

// Notification is a single user-visible message.
type Notification struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Tx      *TxNotice `json:"tx,omitempty"`
}

// Notifier surfaces the outcome of an onboarding action to the user.
type Notifier interface {
	Success(notice TxNotice)
	Error(message string)
}

// Console prints notifications to a terminal.
type Console struct {
	out    io.Writer
	logger *zap.Logger
	mu     sync.Mutex
}

func NewConsole(out io.Writer, logger *zap.Logger) *Console {
	return &Console{out: out, logger: logger.Named("notify")}
}

func (c *Console) Success(notice TxNotice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info("Transaction confirmed", zap.String("hash", notice.Hash.Hex()), zap.Uint64("chainId", notice.ChainID))
	fmt.Fprintf(c.out, "Transaction confirmed: %s\n", notice.Hash.Hex())
	if notice.ExplorerURL != "" {
		fmt.Fprintf(c.out, "View on explorer: %s\n", notice.ExplorerURL)
	}
}

func (c *Console) Error(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Warn("Onboarding failed", zap.String("message", message))
	fmt.Fprintf(c.out, "Error: %s\n", message)
}

// Recorder keeps notifications in memory so a caller can return them, e.g. in
// an HTTP response. Safe for concurrent use.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Success(notice TxNotice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := notice
	r.notifications = append(r.notifications, Notification{
		Kind:    KindSuccess,
		Message: "Transaction confirmed",
		Tx:      &n,
	})
}

func (r *Recorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Kind: KindError, Message: message})
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}
