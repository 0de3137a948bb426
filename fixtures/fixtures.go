package fixtures

import (
	_ "embed"
)

//go:embed abi/ERC20.json
var ERC20ABI string

//go:embed abi/UserFactory.json
var UserFactoryABI string

//go:embed abi/ENSRegistry.json
var ENSRegistryABI string

//go:embed abi/ENSResolver.json
var ENSResolverABI string

//go:embed config/config.yaml.template
var ConfigTemplate []byte
