package oracle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
)

func (o *Oracle) Admin() common.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.admin
}

func (o *Oracle) ValueProvider() common.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.provider
}

func (o *Oracle) MinValueChangeBps() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.minValueChangeBps
}

func (o *Oracle) StalenessThreshold() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stalenessThreshold
}

func (o *Oracle) SetMinValueChangePercentage(caller common.Address, bps uint64) error {
	if bps > bpsDenominator {
		return fmt.Errorf("minimum value change %d bps above %d", bps, bpsDenominator)
	}
	return o.asAdmin(caller, "min value change updated", func() { o.minValueChangeBps = bps }, logger.WithField("bps", bps))
}

func (o *Oracle) SetStalenessThreshold(caller common.Address, seconds uint64) error {
	return o.asAdmin(caller, "staleness threshold updated", func() { o.stalenessThreshold = seconds }, logger.WithField("seconds", seconds))
}

func (o *Oracle) SetRegistry(caller common.Address, registry Registry) error {
	if registry == nil {
		return ErrNilRegistry
	}
	return o.asAdmin(caller, "registry updated", func() { o.registry = registry })
}

func (o *Oracle) SetValueProvider(caller, provider common.Address) error {
	if provider == (common.Address{}) {
		return fmt.Errorf("%w: zero provider", ErrUnauthorized)
	}
	return o.asAdmin(caller, "value provider updated", func() { o.provider = provider }, logger.WithField("provider", provider.Hex()))
}

func (o *Oracle) TransferAdmin(caller, admin common.Address) error {
	if admin == (common.Address{}) {
		return fmt.Errorf("%w: zero admin", ErrUnauthorized)
	}
	return o.asAdmin(caller, "admin transferred", func() { o.admin = admin }, logger.WithField("admin", admin.Hex()))
}

func (o *Oracle) asAdmin(caller common.Address, msg string, apply func(), fields ...logger.Field) error {
	o.mu.Lock()
	if caller != o.admin {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s is not the admin", ErrUnauthorized, caller.Hex())
	}
	apply()
	o.mu.Unlock()
	o.logger.Info(msg, fields...)
	return nil
}
