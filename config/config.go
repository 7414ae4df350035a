// Package config loads the node configuration. The core pipeline consumes
// only the monitored account list; everything else configures the boundary
// layers (bind addresses, queue sizing).
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/Sovereign-Labs/solana-proofs/common"
)

const (
	DefaultQueueSize = 65536

	PolicyDropOldest = "drop-oldest"
	PolicyBlock      = "block"
	PolicyReject     = "reject"
)

// Config is the JSON configuration file.
type Config struct {
	// BindAddress is the TCP address serving framed binary updates.
	BindAddress string `json:"bind_address"`
	// WSBindAddress optionally serves JSON updates over websocket.
	WSBindAddress string `json:"ws_bind_address,omitempty"`
	// AccountList holds the base58 addresses to produce proofs for.
	AccountList []string `json:"account_list"`
	// QueueSize bounds the ingress event queue.
	QueueSize int `json:"queue_size,omitempty"`
	// QueuePolicy selects the backpressure behavior when the queue is full:
	// drop-oldest (default), block or reject.
	QueuePolicy string `json:"queue_policy,omitempty"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg := &Config{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate applies defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.BindAddress == "" {
		return errors.New("bind_address is required")
	}
	if len(c.AccountList) == 0 {
		return errors.New("account_list must name at least one account")
	}
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.QueueSize < 0 {
		return errors.Errorf("queue_size %d is invalid", c.QueueSize)
	}
	switch c.QueuePolicy {
	case "":
		c.QueuePolicy = PolicyDropOldest
	case PolicyDropOldest, PolicyBlock, PolicyReject:
	default:
		return errors.Errorf("unknown queue_policy %q", c.QueuePolicy)
	}
	if _, err := c.MonitoredAccounts(); err != nil {
		return err
	}
	return nil
}

// MonitoredAccounts decodes the configured account list.
func (c *Config) MonitoredAccounts() ([]common.Pubkey, error) {
	out := make([]common.Pubkey, 0, len(c.AccountList))
	for _, s := range c.AccountList {
		pubkey, err := common.Base58ToPubkey(s)
		if err != nil {
			return nil, errors.Wrapf(err, "account_list entry %q", s)
		}
		out = append(out, pubkey)
	}
	return out, nil
}
