// Package factory creates sender implementations for portalsend.
//
// The factory abstracts the creation of senders, allowing switching between
// simulation (dry runs, tests) and the real HTTP sender without changing the
// send session.
//
// # Configuration
//
// The factory starts from the transfer section of the loaded configuration;
// environment overrides are applied by the config package before that.
// Invalid settings are rejected by CreateSenderWithConfig and make
// CreateSender fall back to the built-in defaults.
//
// # Usage
//
//	f := factory.NewSenderFactory(cfg.SenderConfig())
//	sender := f.CreateSender()
//
//	// Or with explicit configuration
//	sender, err := f.CreateSenderWithConfig(&interfaces.SenderConfig{
//	    UseSimulation: true,
//	    DialTimeout:   1000,
//	})
//
// # Dry Runs
//
//	f.SwitchToSimulation()
//	sender := f.CreateSender() // always simulated
package factory
