package keys

import (
	"github.com/ethereum/go-ethereum/accounts/keystore"
)

type Service struct {
	KeyStore *keystore.KeyStore
}

func NewService(keyDir string) *Service {
	return &Service{KeyStore: keystore.NewKeyStore(keyDir, keystore.LightScryptN, keystore.LightScryptP)}
}
