package vault

import (
	"context"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
)

const (
	EventInitialized         = "Initialized"
	EventDeposit             = "Deposit"
	EventWithdraw            = "Withdraw"
	EventWithdrawRequested   = "WithdrawRequested"
	EventClaimed             = "Claimed"
	EventFeeTaken            = "FeeTaken"
	EventExecuted            = "Executed"
	EventOperatorTransferred = "OperatorTransferred"
	EventAgentTransferred    = "AgentTransferred"
	EventMinDepositUpdated   = "MinDepositUpdated"
	EventMaxDepositUpdated   = "MaxDepositUpdated"
	EventTransfer            = "Transfer"
	EventApproval            = "Approval"
)

// emit logs and publishes an event once the surrounding transaction commits.
// kv is a flat list of key, value pairs.
func (v *Vault) emit(ctx context.Context, name string, kv ...interface{}) {
	event := iac.NewEvent(name, v.address, v.chain.Now())
	fields := make([]logger.Field, 0, len(kv)/2+1)
	fields = append(fields, logger.WithField("vault", v.address.Hex()))
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		event = event.With(key, kv[i+1])
		fields = append(fields, logger.WithField(key, event.Fields[key]))
	}

	v.chain.OnCommit(ctx, func() {
		v.logger.Info(name, fields...)
		if v.publisher == nil {
			return
		}
		if err := v.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
			v.logger.Warn("publish event failed", logger.WithField("event", name), logger.WithField("err", err))
		}
	})
}
