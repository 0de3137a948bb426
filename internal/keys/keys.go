package keys

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyFile is the plain wallet key format written by `trust account new`.
type KeyFile struct {
	PublicKey  string `json:"public_key"`
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
}

var ErrPassphraseRequired = errors.New("keyfile is an encrypted keystore, passphrase required")

// LoadWalletKey reads either a plain KeyFile or a v3 encrypted keystore, in
// which case passphrase decrypts it.
func LoadWalletKey(keyfile, passphrase string) (*ecdsa.PrivateKey, common.Address, error) {
	data, err := os.ReadFile(keyfile)
	if err != nil {
		return nil, common.Address{}, err
	}

	var probe struct {
		Crypto json.RawMessage `json:"crypto"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, common.Address{}, err
	}
	if len(probe.Crypto) > 0 {
		if passphrase == "" {
			return nil, common.Address{}, ErrPassphraseRequired
		}
		key, err := keystore.DecryptKey(data, passphrase)
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("failed to decrypt keystore: %w", err)
		}
		return key.PrivateKey, key.Address, nil
	}

	var key KeyFile
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, common.Address{}, err
	}

	privateKey, err := crypto.HexToECDSA(key.PrivateKey)
	if err != nil {
		return nil, common.Address{}, err
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	if key.Address != "" && common.HexToAddress(key.Address) != address {
		return nil, common.Address{}, fmt.Errorf("keyfile address %s does not match private key address %s", key.Address, address.Hex())
	}
	return privateKey, address, nil
}

func GenerateKeyFile(path string) (common.Address, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, err
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	keyFile := KeyFile{
		PublicKey:  common.Bytes2Hex(crypto.FromECDSAPub(&privateKey.PublicKey)),
		Address:    address.Hex(),
		PrivateKey: common.Bytes2Hex(crypto.FromECDSA(privateKey)),
	}

	data, err := json.MarshalIndent(keyFile, "", "  ")
	if err != nil {
		return common.Address{}, err
	}

	if _, err := os.Stat(path); err == nil {
		return common.Address{}, fmt.Errorf("keyfile %s already exists", path)
	}
	return address, os.WriteFile(path, data, 0600)
}
