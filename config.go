package drtp

import (
	"github.com/drtp-go/drtp/internal/protocol"
)

// Clone clones a Config
func (c *Config) Clone() *Config {
	copy := *c
	return &copy
}

// populateConfig populates fields in the drtp.Config with their default values, if none are set
// it may be called with nil
func populateConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	config = config.Clone()
	if config.WindowSize <= 0 {
		config.WindowSize = protocol.DefaultWindowSize
	}
	if config.RetransmissionTimeout <= 0 {
		config.RetransmissionTimeout = protocol.DefaultRetransmissionTimeout
	}
	return config
}
