package conf

import (
	"fmt"
	"os"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
)

// NewLogger builds the configured backend. Logs go to stderr so command output stays clean.
func (c *Conf) NewLogger(service string) (logger.Logger, error) {
	switch c.LogBackend {
	case "", "logrus":
		l := logger.NewLogrusLogger(service, os.Stderr)
		l.SetLogLevel(c.LogLevel)
		if c.Logstash != "" {
			if err := l.AttachLogstash(c.Logstash, service); err != nil {
				return nil, err
			}
		}
		return l, nil
	case "zap":
		l, err := logger.NewZapLogger(service, logger.Development)
		if err != nil {
			return nil, err
		}
		l.SetLogLevel(c.LogLevel)
		return l, nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", c.LogBackend)
	}
}
