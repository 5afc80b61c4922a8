package sign

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/signer"
)

// Service produces digests and keystore credentials bound to one vault's domain.
type Service struct {
	Domain   signer.Domain
	KeyStore *keystore.KeyStore
}

func NewService(chainID *big.Int, vault common.Address, keyDir string) *Service {
	return &Service{
		Domain:   signer.NewDomain(chainID, vault),
		KeyStore: keystore.NewKeyStore(keyDir, keystore.LightScryptN, keystore.LightScryptP),
	}
}

func (s *Service) Digest(out io.Writer, msg signer.Message, deadline *big.Int) (common.Hash, error) {
	digest, err := s.Domain.Digest(msg, deadline)
	if err != nil {
		return common.Hash{}, err
	}
	fmt.Fprintf(out, "type: %s\ndeadline: %s\ndigest: %s\n", msg.PrimaryType(), deadline, digest.Hex())
	return digest, nil
}

func (s *Service) Sign(out io.Writer, from common.Address, password string, msg signer.Message, deadline *big.Int) (types.Credential, error) {
	ks, err := signer.NewKeystoreSigner(s.KeyStore, from, password)
	if err != nil {
		return types.Credential{}, err
	}
	cred, digest, err := signer.Sign(ks, s.Domain, msg, deadline)
	if err != nil {
		return types.Credential{}, err
	}
	fmt.Fprintf(out, "type: %s\nsigner: %s\ndeadline: %s\ndigest: %s\nsignatureId: %s\ncredential: %s\n",
		msg.PrimaryType(), from.Hex(), deadline, digest.Hex(), cred.ID(), cred.Hex())
	return cred, nil
}
