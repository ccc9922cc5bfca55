package httpservice

import (
	"fmt"
	"time"
)

type Config struct {
	Port             uint32
	CORSAllowOrigins []string
	EnableMetrics    bool
	// EnableDevLedger exposes the endpoint crediting accounts of the ledger.
	EnableDevLedger   bool
	HeartbeatInterval time.Duration
}

func (c Config) Validate() error {
	if c.Port == 0 {
		return fmt.Errorf("missing port")
	}
	if c.HeartbeatInterval < 0 {
		return fmt.Errorf("heartbeat interval must not be negative")
	}
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}
