// Package testing provides a simulated sender for deterministic testing and
// dry runs of portalsend.
//
// # Overview
//
// SimulatedSender implements interfaces.ISender entirely in-memory. It opens
// and drains the file exactly like the real sender, checks the byte count
// against the declared size, and records every attempt.
//
// # Simulation vs Real Implementation
//
//   - Simulation (this package): no network; outcomes are scripted with
//     SetOutcome and SetGate. Used for unit tests and the CLI's -simulate flag.
//
//   - Real (real package): a streaming HTTP POST to the receiver.
//
// Both implementations conform to interfaces.ISender, so the factory package
// can switch between them.
//
// # Usage
//
//	sim := testing.NewSimulatedSender(&interfaces.SenderConfig{DialTimeout: 1000})
//	sim.SetOutcome(transfer.RejectionFailure(500, "disk full"))
//
//	err := sim.Send(ctx, req)
//
//	log := sim.GetSendLog()
//	if len(log) != 1 || log[0].Success {
//	    t.Error("expected one failed send")
//	}
//
// Holding an upload in flight:
//
//	gate := make(chan struct{})
//	sim.SetGate(gate)
//	go sim.Send(ctx, req) // blocks after draining
//	close(gate)
//
// # Thread Safety
//
// All methods on SimulatedSender are safe for concurrent use from multiple
// goroutines. Internal synchronization uses sync.RWMutex.
package testing
