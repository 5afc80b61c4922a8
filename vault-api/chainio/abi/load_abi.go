package abi

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	ERC20       = "ERC20"
	MoneyMarket = "MoneyMarket"
	Gateway     = "Gateway"
	ERC1271     = "ERC1271"
)

//go:embed json/*.json
var abiFiles embed.FS

var (
	abiCache = make(map[string]*abi.ABI)
	abiMu    sync.Mutex
)

// GetContractABI returns the parsed ABI of a bundled contract interface.
func GetContractABI(contractName string) (*abi.ABI, error) {
	abiMu.Lock()
	defer abiMu.Unlock()
	if cachedABI, ok := abiCache[contractName]; ok {
		return cachedABI, nil
	}
	raw, err := abiFiles.ReadFile(fmt.Sprintf("json/%s.json", contractName))
	if err != nil {
		return nil, fmt.Errorf("unknown contract abi %s: %w", contractName, err)
	}
	parsedABI, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	abiCache[contractName] = &parsedABI
	return &parsedABI, nil
}

// MustContractABI is GetContractABI for the bundled names, which always parse.
func MustContractABI(contractName string) *abi.ABI {
	parsed, err := GetContractABI(contractName)
	if err != nil {
		panic(err)
	}
	return parsed
}

// Pack encodes a call to method on a bundled contract.
func Pack(contractName, method string, args ...interface{}) ([]byte, error) {
	parsed, err := GetContractABI(contractName)
	if err != nil {
		return nil, err
	}
	input, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", contractName, method, err)
	}
	return input, nil
}

// Unpack decodes the return values of method.
func Unpack(contractName, method string, output []byte) ([]interface{}, error) {
	parsed, err := GetContractABI(contractName)
	if err != nil {
		return nil, err
	}
	values, err := parsed.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s.%s: %w", contractName, method, err)
	}
	return values, nil
}
