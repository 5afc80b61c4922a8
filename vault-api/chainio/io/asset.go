package io

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
)

// DefaultDecimals applies when a token does not implement decimals().
const DefaultDecimals = 18

// Backend is the read-only subset of ethclient.Client used here.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

type AssetInfo struct {
	Address     common.Address
	Name        string
	Symbol      string
	Decimals    uint8
	HasDecimals bool
}

// AssetReader queries token metadata from a JSON-RPC node under a request rate limit.
type AssetReader struct {
	backend Backend
	limiter *rate.Limiter
	logger  logger.Logger
}

func NewAssetReader(backend Backend, requestsPerSecond float64, logger logger.Logger) *AssetReader {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &AssetReader{
		backend: backend,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// DialAssetReader connects to endpoint.
func DialAssetReader(endpoint string, requestsPerSecond float64, logger logger.Logger) (*AssetReader, *ethclient.Client, error) {
	client, err := ethclient.Dial(endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to ethereum node: %w", err)
	}
	return NewAssetReader(client, requestsPerSecond, logger), client, nil
}

func (r *AssetReader) call(ctx context.Context, token common.Address, method string, args ...interface{}) ([]interface{}, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	input, err := contractabi.Pack(contractabi.ERC20, method, args...)
	if err != nil {
		return nil, err
	}
	output, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call contract: %w", err)
	}
	return contractabi.Unpack(contractabi.ERC20, method, output)
}

// Decimals returns the token precision, or DefaultDecimals and false when the token has no decimals().
func (r *AssetReader) Decimals(ctx context.Context, token common.Address) (uint8, bool, error) {
	out, err := r.call(ctx, token, "decimals")
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		r.logger.Debug("decimals unavailable, using default", logger.WithField("token", token.Hex()), logger.WithField("err", err))
		return DefaultDecimals, false, nil
	}
	return out[0].(uint8), true, nil
}

func (r *AssetReader) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	out, err := r.call(ctx, token, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (r *AssetReader) HasCode(ctx context.Context, account common.Address) (bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return false, err
	}
	code, err := r.backend.CodeAt(ctx, account, nil)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

func (r *AssetReader) AssetInfo(ctx context.Context, token common.Address) (AssetInfo, error) {
	ok, err := r.HasCode(ctx, token)
	if err != nil {
		return AssetInfo{}, err
	}
	if !ok {
		return AssetInfo{}, fmt.Errorf("no contract code at %s", token.Hex())
	}
	info := AssetInfo{Address: token}
	if out, err := r.call(ctx, token, "name"); err == nil {
		info.Name = out[0].(string)
	}
	if out, err := r.call(ctx, token, "symbol"); err == nil {
		info.Symbol = out[0].(string)
	}
	info.Decimals, info.HasDecimals, err = r.Decimals(ctx, token)
	if err != nil {
		return AssetInfo{}, err
	}
	return info, nil
}
