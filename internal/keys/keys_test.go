package keys

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyFile(t *testing.T) {
	tempDir := t.TempDir()
	keyFilePath := filepath.Join(tempDir, "key.json")

	address, err := GenerateKeyFile(keyFilePath)
	require.NoError(t, err)

	assert.FileExists(t, keyFilePath)

	data, err := os.ReadFile(keyFilePath)
	require.NoError(t, err)

	var keyFile KeyFile
	err = json.Unmarshal(data, &keyFile)
	require.NoError(t, err)

	assert.NotEmpty(t, keyFile.PublicKey)
	assert.Equal(t, address.Hex(), keyFile.Address)
	assert.NotEmpty(t, keyFile.PrivateKey)

	// Verify that the keys are valid
	privateKey, err := crypto.HexToECDSA(keyFile.PrivateKey)
	require.NoError(t, err)

	publicKey, err := crypto.UnmarshalPubkey(common.Hex2Bytes(keyFile.PublicKey))
	require.NoError(t, err)

	assert.Equal(t, privateKey.PublicKey, *publicKey)
	assert.Equal(t, crypto.PubkeyToAddress(*publicKey).Hex(), keyFile.Address)

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := GenerateKeyFile(keyFilePath)
		assert.Error(t, err)
	})
}

func TestLoadWalletKey_Plain(t *testing.T) {
	tempDir := t.TempDir()
	keyFilePath := filepath.Join(tempDir, "key.json")

	// Generate a key file to use for testing
	generated, err := GenerateKeyFile(keyFilePath)
	require.NoError(t, err)

	t.Run("successful load", func(t *testing.T) {
		privateKey, address, err := LoadWalletKey(keyFilePath, "")
		require.NoError(t, err)
		assert.NotNil(t, privateKey)
		assert.Equal(t, generated, address)
	})

	t.Run("file not found", func(t *testing.T) {
		_, _, err := LoadWalletKey(filepath.Join(tempDir, "nonexistent.json"), "")
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		malformedJSONPath := filepath.Join(tempDir, "malformed.json")
		err := os.WriteFile(malformedJSONPath, []byte("{"), 0600)
		require.NoError(t, err)

		_, _, err = LoadWalletKey(malformedJSONPath, "")
		assert.Error(t, err)
	})

	t.Run("invalid private key", func(t *testing.T) {
		invalidKeyPath := filepath.Join(tempDir, "invalid_key.json")
		keyFile := KeyFile{
			PublicKey:  "04abc",
			Address:    "0x123",
			PrivateKey: "invalid",
		}
		data, err := json.Marshal(keyFile)
		require.NoError(t, err)
		err = os.WriteFile(invalidKeyPath, data, 0600)
		require.NoError(t, err)

		_, _, err = LoadWalletKey(invalidKeyPath, "")
		assert.Error(t, err)
	})

	t.Run("address mismatch", func(t *testing.T) {
		privateKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		mismatchPath := filepath.Join(tempDir, "mismatch.json")
		data, err := json.Marshal(KeyFile{
			Address:    "0x0000000000000000000000000000000000000001",
			PrivateKey: common.Bytes2Hex(crypto.FromECDSA(privateKey)),
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(mismatchPath, data, 0600))

		_, _, err = LoadWalletKey(mismatchPath, "")
		assert.Error(t, err)
	})
}

func TestLoadWalletKey_Keystore(t *testing.T) {
	tempDir := t.TempDir()
	privateKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	key := &keystore.Key{
		Id:         uuid.New(),
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		PrivateKey: privateKey,
	}
	encrypted, err := keystore.EncryptKey(key, "hunter2", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)
	path := filepath.Join(tempDir, "keystore.json")
	require.NoError(t, os.WriteFile(path, encrypted, 0600))

	t.Run("decrypts with passphrase", func(t *testing.T) {
		_, address, err := LoadWalletKey(path, "hunter2")
		require.NoError(t, err)
		assert.Equal(t, key.Address, address)
	})

	t.Run("requires passphrase", func(t *testing.T) {
		_, _, err := LoadWalletKey(path, "")
		assert.ErrorIs(t, err, ErrPassphraseRequired)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		_, _, err := LoadWalletKey(path, "wrong")
		assert.Error(t, err)
	})
}
