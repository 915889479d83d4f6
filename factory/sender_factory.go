package factory

import (
	"fmt"
	"sync"

	"github.com/opd-ai/portalsend/interfaces"
	"github.com/opd-ai/portalsend/real"
	"github.com/opd-ai/portalsend/testing"
	"github.com/sirupsen/logrus"
)

// DefaultDialTimeout is used when no configuration is supplied, in milliseconds.
const DefaultDialTimeout = 10000

// SenderFactory creates sender implementations based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type SenderFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.SenderConfig
}

// NewSenderFactory creates a factory starting from base, usually the
// transfer section of the loaded configuration. The base is copied; a nil
// base uses the built-in defaults.
func NewSenderFactory(base *interfaces.SenderConfig) *SenderFactory {
	config := createDefaultConfig()
	if base != nil {
		copied := *base
		config = &copied
	}

	logrus.WithFields(logrus.Fields{
		"function":       "NewSenderFactory",
		"use_simulation": config.UseSimulation,
		"dial_timeout":   config.DialTimeout,
	}).Info("Created sender factory with configuration")

	return &SenderFactory{
		defaultConfig: config,
	}
}

// createDefaultConfig initializes the default sender configuration.
//
// Default Value Rationale:
//   - UseSimulation: false - real uploads unless explicitly disabled
//   - DialTimeout: 10000ms - a LAN peer either answers quickly or is gone
func createDefaultConfig() *interfaces.SenderConfig {
	return &interfaces.SenderConfig{
		UseSimulation: false,
		DialTimeout:   DefaultDialTimeout,
	}
}

// CreateSender creates a sender implementation based on the default configuration.
func (f *SenderFactory) CreateSender() interfaces.ISender {
	f.mu.RLock()
	config := *f.defaultConfig
	f.mu.RUnlock()

	sender, err := f.CreateSenderWithConfig(&config)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "CreateSender",
			"error":    err.Error(),
		}).Error("Default configuration rejected, falling back to built-in defaults")
		fallback := createDefaultConfig()
		fallback.UseSimulation = config.UseSimulation
		sender, _ = f.CreateSenderWithConfig(fallback)
	}
	return sender
}

// CreateSenderWithConfig creates a sender implementation with custom configuration.
func (f *SenderFactory) CreateSenderWithConfig(config *interfaces.SenderConfig) (interfaces.ISender, error) {
	if config == nil {
		f.mu.RLock()
		copied := *f.defaultConfig
		f.mu.RUnlock()
		config = &copied
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sender config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "CreateSenderWithConfig",
		"use_simulation": config.UseSimulation,
		"dial_timeout":   config.DialTimeout,
	}).Info("Creating sender implementation")

	if config.UseSimulation {
		return testing.NewSimulatedSender(config), nil
	}
	return real.NewHTTPSender(config), nil
}

// SwitchToSimulation makes later CreateSender calls return the simulated
// sender regardless of the configured mode.
func (f *SenderFactory) SwitchToSimulation() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToSimulation",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to simulation mode")

	f.defaultConfig.UseSimulation = true
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *SenderFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}
