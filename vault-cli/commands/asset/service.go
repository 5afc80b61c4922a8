package asset

import (
	"github.com/ethereum/go-ethereum/ethclient"

	chainio "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/io"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
)

type Service struct {
	Reader *chainio.AssetReader
	client *ethclient.Client
}

// NewService dials the node at rpc. Close releases the connection.
func NewService(rpc string, rateLimit float64, log logger.Logger) (*Service, error) {
	reader, client, err := chainio.DialAssetReader(rpc, rateLimit, log)
	if err != nil {
		return nil, err
	}
	return &Service{Reader: reader, client: client}, nil
}

func (s *Service) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
