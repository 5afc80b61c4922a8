package keys

import (
	"fmt"
	"io"
)

func (s *Service) List(out io.Writer) {
	accounts := s.KeyStore.Accounts()
	if len(accounts) == 0 {
		fmt.Fprintln(out, "no accounts")
		return
	}
	for _, account := range accounts {
		fmt.Fprintf(out, "- address: %s\n  file: %s\n", account.Address.Hex(), account.URL.Path)
	}
}
