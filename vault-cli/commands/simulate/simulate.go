package simulate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/ledger"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
	oracledefault "github.com/mirailabs-co/partnr-defai-evm/vault-api/metrics/indicators/oracle_default"
	vaultdefault "github.com/mirailabs-co/partnr-defai-evm/vault-api/metrics/indicators/vault_default"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/oracle"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/signer"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy/gateway"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy/moneymarket"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/vault"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/units"
)

var (
	assetAddr    = common.HexToAddress("0x000000000000000000000000000000000000a001")
	targetAddr   = common.HexToAddress("0x000000000000000000000000000000000000a002")
	factoryAddr  = common.HexToAddress("0x000000000000000000000000000000000000a003")
	feeAddr      = common.HexToAddress("0x000000000000000000000000000000000000a004")
	platformAddr = common.HexToAddress("0x000000000000000000000000000000000000a005")
)

// Scenario amounts in whole tokens.
const (
	initialDeposit = 100_000
	userDeposit    = 10_000
	withdrawAmount = 5_000
	withdrawFee    = 1_000
	requestAmount  = 2_000
	claimFee       = 200
)

type Options struct {
	Now           uint64
	ChainID       *big.Int
	AssetDecimals uint8
	Kind          strategy.Kind
	ReserveBps    uint16
	Name          string
	Symbol        string
	MinDeposit    *big.Int
	MaxDeposit    *big.Int

	MinValueChangeBps  uint64
	StalenessThreshold uint64

	Logger     logger.Logger
	Registerer prometheus.Registerer
	Publisher  iac.Publisher
}

// Report is what the scenario produced.
type Report struct {
	Vault         common.Address
	Operator      common.Address
	Agent         common.Address
	User          common.Address
	GenesisShares *big.Int
	DepositShares *big.Int
	WithdrawNet   *big.Int
	ClaimNet      *big.Int
	ReplayErr     error
	TotalAssets   *big.Int
	TotalSupply   *big.Int
	Events        []iac.Event
}

type run struct {
	ctx      context.Context
	out      io.Writer
	opts     Options
	unit     *big.Int
	clock    *ledger.ManualClock
	chain    *ledger.Ledger
	token    *ledger.Token
	operator *signer.PrivateKeySigner
	agent    *signer.PrivateKeySigner
	user     *signer.PrivateKeySigner
	vault    *vault.Vault
	oracle   *oracle.Oracle
}

// Run initializes a vault, takes a deposit, pays a signed withdrawal with a fee,
// replays it, then settles an asynchronous request through a claim.
func Run(ctx context.Context, out io.Writer, opts Options) (*Report, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Now == 0 {
		opts.Now = uint64(time.Now().Unix())
	}
	r := &run{
		ctx:   ctx,
		out:   out,
		opts:  opts,
		unit:  new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(opts.AssetDecimals)), nil),
		clock: ledger.NewManualClock(opts.Now),
	}
	r.chain = ledger.New(r.clock, ledger.WithLogger(opts.Logger))
	for _, s := range []**signer.PrivateKeySigner{&r.operator, &r.agent, &r.user} {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		*s = signer.NewPrivateKeySigner(key)
	}

	recorder := iac.NewRecorder()
	var publisher iac.Publisher = recorder
	if opts.Publisher != nil {
		publisher = iac.Fanout{recorder, opts.Publisher}
	}
	var (
		vaultIndicators  vaultdefault.Indicators  = vaultdefault.NoopIndicators{}
		oracleIndicators oracledefault.Indicators = oracledefault.NoopIndicators{}
	)
	if opts.Registerer != nil {
		vaultIndicators = vaultdefault.NewPromIndicators(opts.Registerer)
		oracleIndicators = oracledefault.NewPromIndicators(opts.Registerer)
	}

	registry := vault.NewRegistry(factoryAddr, r.chain)
	s, params, err := r.deployMarket(registry, publisher, oracleIndicators)
	if err != nil {
		return nil, err
	}

	report := &Report{Operator: r.operator.Address(), Agent: r.agent.Address(), User: r.user.Address()}
	r.vault, err = registry.Create(ctx, vault.Config{
		Asset:      assetAddr,
		Name:       opts.Name,
		Symbol:     opts.Symbol,
		Operator:   r.operator.Address(),
		Agent:      r.agent.Address(),
		MinDeposit: opts.MinDeposit,
		MaxDeposit: opts.MaxDeposit,
		ChainID:    opts.ChainID,
	}, vault.WithLogger(opts.Logger), vault.WithIndicators(vaultIndicators), vault.WithPublisher(publisher))
	if err != nil {
		return nil, err
	}
	report.Vault = r.vault.Address()
	r.printf("vault %s (%s) over %s, strategy %s, decimals offset %d\n",
		r.vault.Symbol(), report.Vault.Hex(), assetAddr.Hex(), params.Kind(), r.vault.DecimalsOffset())

	if report.GenesisShares, err = r.initialize(s, params); err != nil {
		return nil, err
	}
	if report.DepositShares, err = r.deposit(); err != nil {
		return nil, err
	}
	if err = r.withdraw(report); err != nil {
		return nil, err
	}
	if report.ClaimNet, err = r.requestAndClaim(); err != nil {
		return nil, err
	}

	if report.TotalAssets, err = r.vault.TotalAssets(ctx); err != nil {
		return nil, err
	}
	report.TotalSupply = r.vault.TotalSupply(ctx)
	r.printf("total assets %s, total supply %s\n", r.assets(report.TotalAssets), r.shares(report.TotalSupply))
	report.Events = recorder.Events()
	r.printf("%d events published\n", len(report.Events))
	return report, nil
}

// deployMarket deploys the asset and the external protocol the strategy talks to.
func (r *run) deployMarket(registry oracle.Registry, publisher iac.Publisher, indicators oracledefault.Indicators) (strategy.Strategy, strategy.Params, error) {
	r.token = ledger.NewToken("Simulated USD", "sUSD", r.opts.AssetDecimals)
	if err := r.chain.Deploy(assetAddr, r.token); err != nil {
		return nil, nil, err
	}
	switch r.opts.Kind {
	case strategy.KindMoneyMarket:
		if err := r.chain.Deploy(targetAddr, ledger.NewMoneyMarket(r.chain, targetAddr, assetAddr)); err != nil {
			return nil, nil, err
		}
		return moneymarket.New(r.chain), strategy.MoneyMarketParams{
			Market:     targetAddr,
			Asset:      assetAddr,
			ReserveBps: r.opts.ReserveBps,
		}, nil
	case strategy.KindGateway:
		if err := r.chain.Deploy(targetAddr, ledger.NewGateway(r.chain, targetAddr, assetAddr)); err != nil {
			return nil, nil, err
		}
		valueOracle, err := oracle.New(oracle.Config{
			Admin:              r.operator.Address(),
			Provider:           r.agent.Address(),
			MinValueChangeBps:  r.opts.MinValueChangeBps,
			StalenessThreshold: r.opts.StalenessThreshold,
		}, registry, r.clock,
			oracle.WithLogger(r.opts.Logger),
			oracle.WithIndicators(indicators),
			oracle.WithPublisher(publisher),
		)
		if err != nil {
			return nil, nil, err
		}
		r.oracle = valueOracle
		return gateway.New(r.chain, gateway.WithValueSource(valueOracle)), strategy.GatewayParams{
			Gateway:    targetAddr,
			Asset:      assetAddr,
			ReserveBps: r.opts.ReserveBps,
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", strategy.ErrUnknownKind, r.opts.Kind)
	}
}

func (r *run) initialize(s strategy.Strategy, params strategy.Params) (*big.Int, error) {
	amount := r.tokens(initialDeposit)
	r.token.Mint(r.vault.Address(), amount)
	minted, err := r.vault.Initialize(r.ctx, r.agent.Address(), amount, s, params)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	r.printf("initialized with %s, agent received %s shares\n", r.assets(amount), r.shares(minted))
	return minted, nil
}

func (r *run) deposit() (*big.Int, error) {
	amount := r.tokens(userDeposit)
	user := r.user.Address()
	r.token.Mint(user, amount)
	r.token.Approve(user, r.vault.Address(), ledger.MaxUint256)

	preview, err := r.vault.PreviewDeposit(r.ctx, amount)
	if err != nil {
		return nil, err
	}
	minted, err := r.vault.Deposit(r.ctx, user, amount, user)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	r.printf("user deposited %s, previewed %s shares, received %s\n", r.assets(amount), r.shares(preview), r.shares(minted))
	return minted, r.report(new(big.Int).Add(r.tokens(initialDeposit), amount))
}

// report pushes a fresh value for gateway vaults so pricing follows custody.
func (r *run) report(value *big.Int) error {
	if r.oracle == nil {
		return nil
	}
	if err := r.oracle.SetVaultValue(r.ctx, r.agent.Address(), r.vault.Address(), value); err != nil {
		return fmt.Errorf("report value: %w", err)
	}
	r.printf("oracle reported %s\n", r.assets(value))
	return nil
}

// withdraw pays a fee-bearing signed withdrawal, then presents the same credential again.
func (r *run) withdraw(report *Report) error {
	amount := r.tokens(withdrawAmount)
	user := r.user.Address()
	fees := []types.Fee{{FeeType: types.FeeTypeWithdraw, Amount: r.tokens(withdrawFee), Receiver: feeAddr}}
	msg, err := signer.NewWithdrawMessage(amount, user, fees)
	if err != nil {
		return err
	}
	cred, digest, err := signer.Sign(r.operator, r.vault.Domain(), msg, r.deadline())
	if err != nil {
		return err
	}
	net, err := r.vault.Withdraw(r.ctx, user, amount, user, fees, cred)
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	r.printf("operator signed withdrawal %s (digest %s): user received %s, fee receiver %s\n",
		cred.ID(), digest.Hex(), r.assets(net), r.assets(r.token.BalanceOf(feeAddr)))

	_, replayErr := r.vault.Withdraw(r.ctx, user, amount, user, fees, cred)
	if !errors.Is(replayErr, vault.ErrSignatureUsed) {
		return fmt.Errorf("replayed withdrawal was not rejected: %v", replayErr)
	}
	r.printf("replay rejected: %v\n", replayErr)
	report.WithdrawNet = net
	report.ReplayErr = replayErr
	return nil
}

func (r *run) requestAndClaim() (*big.Int, error) {
	amount := r.tokens(requestAmount)
	user := r.user.Address()
	id := types.NewRequestID()

	consent, _, err := signer.Sign(r.user, r.vault.Domain(), signer.RequestWithdrawMessage{RequestID: id}, r.deadline())
	if err != nil {
		return nil, err
	}
	if err := r.vault.RequestWithdraw(r.ctx, r.agent.Address(), amount, user, id, consent); err != nil {
		return nil, fmt.Errorf("request withdraw: %w", err)
	}
	r.printf("agent queued request %s for %s\n", id, r.assets(amount))
	r.clock.Advance(60)

	fees := []types.Fee{{FeeType: types.FeeTypePlatform, Amount: r.tokens(claimFee), Receiver: platformAddr}}
	msg, err := signer.NewClaimMessage(id, user, r.vault.Address(), amount, fees)
	if err != nil {
		return nil, err
	}
	cred, _, err := signer.Sign(r.operator, r.vault.Domain(), msg, r.deadline())
	if err != nil {
		return nil, err
	}
	net, err := r.vault.Claim(r.ctx, user, id, user, r.vault.Address(), fees, cred)
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	r.printf("claimed %s: user received %s, platform fee %s, user shares left %s\n",
		id, r.assets(net), r.assets(r.token.BalanceOf(platformAddr)), r.shares(r.vault.BalanceOf(r.ctx, user)))
	return net, nil
}

func (r *run) deadline() *big.Int {
	return new(big.Int).SetUint64(r.clock.Now() + 3600)
}

func (r *run) tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), r.unit)
}

func (r *run) assets(x *big.Int) string {
	return units.FormatUnits(x, r.opts.AssetDecimals)
}

func (r *run) shares(x *big.Int) string {
	return units.FormatUnits(x, r.vault.Decimals())
}

func (r *run) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}
