package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const (
	// ConnectorInjected signs locally with the configured keyfile and sends through wallet.rpcProvider.
	ConnectorInjected = "injected"
	// ConnectorMiniApp forwards requests to the EIP-1193 provider exposed by the mini-app host.
	ConnectorMiniApp = "miniapp"

	DefaultENSRegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	DefaultTokenDecimals      = 6
)

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
		Encoding  string `yaml:"encoding"`
	} `yaml:"logger"`
	Wallet struct {
		Connectors  []string `yaml:"connectors"`
		Keyfile     string   `yaml:"keyfile"`
		RpcProvider string   `yaml:"rpcProvider"`
	} `yaml:"wallet"`
	Chains map[uint64]ChainConfig `yaml:"chains"`
	Token  struct {
		Symbol string `yaml:"symbol"`
		// Decimals is a pointer so that an explicit 0 survives ApplyDefaults.
		Decimals *uint8 `yaml:"decimals"`
	} `yaml:"token"`
	ENS struct {
		RpcProvider     string `yaml:"rpcProvider"`
		RegistryAddress string `yaml:"registryAddress"`
	} `yaml:"ens"`
	Transactions struct {
		ReceiptTimeout time.Duration `yaml:"receiptTimeout"`
	} `yaml:"transactions"`
	MiniApp struct {
		HostURL        string        `yaml:"hostUrl"`
		RequestTimeout time.Duration `yaml:"requestTimeout"`
	} `yaml:"miniapp"`
	Server struct {
		ListenAddress string `yaml:"listenAddress"`
		ListenPort    int    `yaml:"listenPort"`
		// Operators may sign onboarding requests. Empty leaves the endpoint open.
		Operators  []string      `yaml:"operators"`
		AuthWindow time.Duration `yaml:"authWindow"`
	} `yaml:"server"`
	Site SiteConfig `yaml:"site"`
}

// ChainConfig holds the contract set deployed on a single chain.
type ChainConfig struct {
	Name        string `yaml:"name"`
	ExplorerURL string `yaml:"explorerUrl"`
	Contracts   struct {
		DefaultAssetERC20 string `yaml:"defaultAssetERC20"`
		UserFactory       string `yaml:"userFactory"`
	} `yaml:"contracts"`
}

// SiteConfig feeds the page metadata and the mini-app embed rendered by the root layout.
type SiteConfig struct {
	Title                 string `yaml:"title"`
	Description           string `yaml:"description"`
	URL                   string `yaml:"url"`
	ImageURL              string `yaml:"imageUrl"`
	AppName               string `yaml:"appName"`
	ButtonTitle           string `yaml:"buttonTitle"`
	SplashImageURL        string `yaml:"splashImageUrl"`
	SplashBackgroundColor string `yaml:"splashBackgroundColor"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

// ApplyDefaults fills every unset field that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Logger.Verbosity == "" {
		c.Logger.Verbosity = "info"
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = "json"
	}
	if len(c.Wallet.Connectors) == 0 {
		c.Wallet.Connectors = []string{ConnectorInjected}
	}
	if c.Token.Symbol == "" {
		c.Token.Symbol = "USDC"
	}
	if c.Token.Decimals == nil {
		decimals := uint8(DefaultTokenDecimals)
		c.Token.Decimals = &decimals
	}
	if c.ENS.RegistryAddress == "" {
		c.ENS.RegistryAddress = DefaultENSRegistryAddress
	}
	if c.MiniApp.RequestTimeout == 0 {
		c.MiniApp.RequestTimeout = 5 * time.Second
	}
	if c.Server.ListenPort == 0 {
		c.Server.ListenPort = 8080
	}
	if c.Server.AuthWindow == 0 {
		c.Server.AuthWindow = 5 * time.Minute
	}
	if c.Site.Title == "" {
		c.Site.Title = "Trust Protocol - Programmable Onchain Trust Primitive"
	}
	if c.Site.Description == "" {
		c.Site.Description = "Trust protocol is an open-source layer zero for decentralized trust infrastructure"
	}
	if c.Site.AppName == "" {
		c.Site.AppName = "Trust Protocol"
	}
	if c.Site.ButtonTitle == "" {
		c.Site.ButtonTitle = "Launch Trust Protocol"
	}
	if c.Site.ImageURL == "" {
		c.Site.ImageURL = "/trust_hero.svg"
	}
	if c.Site.SplashImageURL == "" {
		c.Site.SplashImageURL = c.Site.ImageURL
	}
	if c.Site.SplashBackgroundColor == "" {
		c.Site.SplashBackgroundColor = "#cdffd8"
	}
}

func (c *Config) Validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain must be configured")
	}
	for id := range c.Chains {
		if id == 0 {
			return fmt.Errorf("chain id 0 is not allowed")
		}
	}
	for _, name := range c.Wallet.Connectors {
		switch name {
		case ConnectorInjected:
			if c.Wallet.RpcProvider == "" {
				return fmt.Errorf("connector %q requires wallet.rpcProvider", name)
			}
		case ConnectorMiniApp:
			if c.MiniApp.HostURL == "" {
				return fmt.Errorf("connector %q requires miniapp.hostUrl", name)
			}
		default:
			return fmt.Errorf("unknown wallet connector %q", name)
		}
	}
	if c.TokenDecimals() > 36 {
		return fmt.Errorf("token decimals %d out of range", c.TokenDecimals())
	}
	for _, op := range c.Server.Operators {
		if !common.IsHexAddress(op) {
			return fmt.Errorf("invalid operator address %q", op)
		}
	}
	return nil
}

// TokenDecimals returns the configured bond token decimals.
func (c *Config) TokenDecimals() uint8 {
	if c.Token.Decimals == nil {
		return DefaultTokenDecimals
	}
	return *c.Token.Decimals
}

// KeyfilePath resolves the wallet keyfile against the home directory when it is relative.
func (c *Config) KeyfilePath(home string) string {
	if c.Wallet.Keyfile == "" || filepath.IsAbs(c.Wallet.Keyfile) {
		return c.Wallet.Keyfile
	}
	return filepath.Join(home, c.Wallet.Keyfile)
}

func GetDefaultConfigHome() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trust"
	}
	return filepath.Join(homeDir, ".trust")
}

// ConfigPath returns the location of config.yaml inside home.
func ConfigPath(home string) string {
	return filepath.Join(home, "config.yaml")
}
