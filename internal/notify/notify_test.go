package notify

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, zap.NewNop())

	hash := common.HexToHash("0xabc")
	c.Success(TxNotice{Hash: hash, ChainID: 8453, ExplorerURL: "https://basescan.org/tx/" + hash.Hex()})
	c.Error("Please enter an amount")

	out := buf.String()
	assert.Contains(t, out, "Transaction confirmed: "+hash.Hex())
	assert.Contains(t, out, "View on explorer: https://basescan.org/tx/"+hash.Hex())
	assert.Contains(t, out, "Error: Please enter an amount")
}

func TestConsole_NoExplorer(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, zap.NewNop()).Success(TxNotice{Hash: common.HexToHash("0x1"), ChainID: 1})
	assert.NotContains(t, buf.String(), "View on explorer")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Empty(t, r.Notifications())

	r.Error("Wallet not connected")
	r.Success(TxNotice{Hash: common.HexToHash("0x2"), ChainID: 11155111})

	got := r.Notifications()
	require.Len(t, got, 2)
	assert.Equal(t, Notification{Kind: KindError, Message: "Wallet not connected"}, got[0])
	assert.Equal(t, KindSuccess, got[1].Kind)
	require.NotNil(t, got[1].Tx)
	assert.Equal(t, uint64(11155111), got[1].Tx.ChainID)
}
