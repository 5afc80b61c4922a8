package keys

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

func (s *Service) Create(out io.Writer, password string) (accounts.Account, error) {
	account, err := s.KeyStore.NewAccount(password)
	if err != nil {
		return accounts.Account{}, err
	}
	fmt.Fprintf(out, "create new account: %s\n", account.Address.Hex())
	return account, nil
}

func (s *Service) Import(out io.Writer, privateKeyHex, password string) (accounts.Account, error) {
	key, err := crypto.HexToECDSA(trimHexPrefix(privateKeyHex))
	if err != nil {
		return accounts.Account{}, fmt.Errorf("invalid private key: %w", err)
	}
	account, err := s.KeyStore.ImportECDSA(key, password)
	if err != nil {
		return accounts.Account{}, err
	}
	fmt.Fprintf(out, "import new account: %s\n", account.Address.Hex())
	return account, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
