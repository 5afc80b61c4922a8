package conf

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type Conf struct {
	LogLevel   string `json:"logLevel"`
	LogBackend string `json:"logBackend"`
	Logstash   string `json:"logstash"`
	Chain      Chain
	Account    Account
	Vault      Vault
	Strategy   Strategy
	Oracle     Oracle
	Metrics    Metrics
	Events     Events
}

type Chain struct {
	ID        int64   `json:"id"`
	RPC       string  `json:"rpc"`
	RateLimit float64 `json:"rateLimit"`
}

type Account struct {
	KeyDir string `json:"keyDir"`
}

type Vault struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Operator   string `json:"operator"`
	Agent      string `json:"agent"`
	MinDeposit string `json:"minDeposit"`
	MaxDeposit string `json:"maxDeposit"`
}

type Strategy struct {
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	ReserveBps uint16 `json:"reserveBps"`
}

type Oracle struct {
	MinValueChangeBps  uint64 `json:"minValueChangeBps"`
	StalenessThreshold uint64 `json:"stalenessThreshold"`
}

type Metrics struct {
	Address string `json:"address"`
}

type Events struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
	GroupID string   `json:"groupId"`
}

func (c *Conf) ChainID() *big.Int {
	if c.Chain.ID == 0 {
		return big.NewInt(1)
	}
	return big.NewInt(c.Chain.ID)
}

// VaultAddress returns the configured vault or an error when it is unset.
func (c *Conf) VaultAddress() (common.Address, error) {
	if !common.IsHexAddress(c.Vault.Address) {
		return common.Address{}, fmt.Errorf("vault address %q is not a hex address", c.Vault.Address)
	}
	return common.HexToAddress(c.Vault.Address), nil
}

// DepositBounds parses the configured limits. Empty values are nil.
func (v Vault) DepositBounds() (minDeposit, maxDeposit *big.Int, err error) {
	if minDeposit, err = parseAmount("minDeposit", v.MinDeposit); err != nil {
		return nil, nil, err
	}
	if maxDeposit, err = parseAmount("maxDeposit", v.MaxDeposit); err != nil {
		return nil, nil, err
	}
	return minDeposit, maxDeposit, nil
}

func parseAmount(name, s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	x, ok := new(big.Int).SetString(s, 10)
	if !ok || x.Sign() < 0 {
		return nil, fmt.Errorf("%s %q is not a non-negative integer", name, s)
	}
	return x, nil
}

var content = `
logLevel = "info"
logBackend = "logrus" # logrus or zap
logstash = "" # host:port of a logstash tcp input, empty to disable

[chain]
id = 8453 # chain id bound into signing domains
rpc = "https://mainnet.base.org" # chain rpc url
rateLimit = 10 # rpc requests per second

[account]
keyDir = "{keyDir}"

[vault]
address = ""
name = "Partnr Vault"
symbol = "pVAULT"
operator = ""
agent = ""
minDeposit = "1"
maxDeposit = ""

[strategy]
kind = "money-market" # money-market or gateway
target = ""
reserveBps = 0

[oracle]
minValueChangeBps = 100
stalenessThreshold = 3600

[metrics]
address = "" # e.g. 127.0.0.1:9090, empty to disable

[events]
brokers = []
topic = "partnr-vault-events"
groupId = "vault-cli"
`
