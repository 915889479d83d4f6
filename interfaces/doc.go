// Package interfaces defines the core abstractions for sending files and
// reading the receiver address in portalsend.
//
// This package lets the send session work against either a real HTTP sender
// or a simulated one, and against any settings backend.
//
// # Core Interfaces
//
// [ISender] performs exactly one upload per call:
//
//	sender := factory.NewSenderFactory(cfg.SenderConfig()).CreateSender()
//	if err := sender.Send(ctx, req); err != nil {
//	    f := transfer.Classify(err)
//	    log.Printf("upload failed (%s): %v", f.Reason, err)
//	}
//
// [IAddressStore] is the read side of the settings store:
//
//	addr, ok := store.Get(settings.ReceiverAddressKey)
//
// # Configuration
//
// [SenderConfig] holds settings for sender implementations:
//
//	config := &interfaces.SenderConfig{
//	    UseSimulation: false,
//	    DialTimeout:   10000, // milliseconds
//	}
//	if err := config.Validate(); err != nil {
//	    log.Fatalf("invalid config: %v", err)
//	}
//
// # Implementation Selection
//
// The factory package creates implementations based on configuration:
//   - UseSimulation=true: SimulatedSender from the testing package
//   - UseSimulation=false: HTTPSender from the real package
//
// # Thread Safety
//
// Implementations must be safe for concurrent use, although a send session
// only ever has one upload in flight.
package interfaces
