package vault

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/signer"
)

// Execute runs an operator signed batch of calls as the vault. The first failing
// call aborts the batch and nothing of it is applied.
func (v *Vault) Execute(ctx context.Context, caller common.Address, actions []types.Execution, cred types.Credential) ([][]byte, error) {
	var results [][]byte
	err := v.guarded(ctx, "execute", func(ctx context.Context) error {
		if err := v.authorize(ctx, signer.NewExecuteMessage(v.address, actions), cred, v.st.operator); err != nil {
			return err
		}
		var err error
		results, err = v.runActions(ctx, actions)
		if err != nil {
			return err
		}
		v.markSignatureUsed(cred)

		v.emit(ctx, EventExecuted,
			"caller", caller,
			"actions", len(actions),
			"targetsHash", signer.HashTargets(actions),
			"signature", cred.ID(),
		)
		n := len(actions)
		v.chain.OnCommit(ctx, func() {
			v.indicators.AddExecutedActions(v.address.Hex(), n)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
