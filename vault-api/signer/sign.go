package signer

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
)

// Signer produces 65 byte r||s||v signatures over 32 byte digests.
type Signer interface {
	Address() common.Address
	SignHash(hash []byte) ([]byte, error)
}

type PrivateKeySigner struct {
	key *ecdsa.PrivateKey
}

func NewPrivateKeySigner(key *ecdsa.PrivateKey) *PrivateKeySigner {
	return &PrivateKeySigner{key: key}
}

func NewPrivateKeySignerFromHex(hexKey string) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewPrivateKeySigner(key), nil
}

func (s *PrivateKeySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *PrivateKeySigner) SignHash(hash []byte) ([]byte, error) {
	return crypto.Sign(hash, s.key)
}

// KeystoreSigner signs with an encrypted key from a go-ethereum keystore.
type KeystoreSigner struct {
	ks         *keystore.KeyStore
	account    accounts.Account
	passphrase string
}

func NewKeystoreSigner(ks *keystore.KeyStore, address common.Address, passphrase string) (*KeystoreSigner, error) {
	account, err := ks.Find(accounts.Account{Address: address})
	if err != nil {
		return nil, fmt.Errorf("account %s not in keystore: %w", address.Hex(), err)
	}
	return &KeystoreSigner{ks: ks, account: account, passphrase: passphrase}, nil
}

func (s *KeystoreSigner) Address() common.Address {
	return s.account.Address
}

func (s *KeystoreSigner) SignHash(hash []byte) ([]byte, error) {
	return s.ks.SignHashWithPassphrase(s.account, s.passphrase, hash)
}

// Sign authorizes msg until deadline and returns the credential with its digest.
func Sign(s Signer, domain Domain, msg Message, deadline *big.Int) (types.Credential, common.Hash, error) {
	digest, err := domain.Digest(msg, deadline)
	if err != nil {
		return types.Credential{}, common.Hash{}, err
	}
	sig, err := s.SignHash(digest.Bytes())
	if err != nil {
		return types.Credential{}, common.Hash{}, fmt.Errorf("failed to sign digest: %w", err)
	}
	cred, err := types.NewCredential(sig, deadline)
	if err != nil {
		return types.Credential{}, common.Hash{}, err
	}
	return cred, digest, nil
}
