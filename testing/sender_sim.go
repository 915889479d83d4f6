package testing

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/opd-ai/portalsend/interfaces"
	"github.com/opd-ai/portalsend/transfer"
	"github.com/sirupsen/logrus"
)

// SimulatedSender implements interfaces.ISender without touching the network.
// It drains the source exactly as the real sender would and records the
// outcome for test verification.
type SimulatedSender struct {
	sendLog []SendRecord
	outcome error
	gate    <-chan struct{}
	config  *interfaces.SenderConfig
	mu      sync.RWMutex
}

// SendRecord represents one simulated upload for testing verification
type SendRecord struct {
	Address   string
	FileName  string
	Declared  int64
	BytesRead int64
	Timestamp int64
	Success   bool
	Error     error
}

// NewSimulatedSender creates a new simulation implementation for testing
func NewSimulatedSender(config *interfaces.SenderConfig) *SimulatedSender {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	logrus.WithFields(logrus.Fields{
		"function":     "NewSimulatedSender",
		"dial_timeout": config.DialTimeout,
	}).Info("Creating simulated sender for testing")

	return &SimulatedSender{
		sendLog: make([]SendRecord, 0),
		config:  config,
	}
}

// SetOutcome makes every later Send return err after draining the source.
// Pass nil to simulate acceptance.
func (s *SimulatedSender) SetOutcome(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = err
}

// SetGate makes Send block after draining until gate is closed or the
// context ends. Pass nil to remove the gate.
func (s *SimulatedSender) SetGate(gate <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = gate
}

// Send implements interfaces.ISender with simulation
func (s *SimulatedSender) Send(ctx context.Context, req *transfer.Request) error {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	if req == nil || req.File == nil {
		return transfer.ConfigurationFailure(transfer.ErrNoFile)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "SimulatedSender.Send",
		"address":   req.Address,
		"file_name": req.File.Name,
		"file_size": req.File.Size,
	}).Info("Simulating upload")

	n, err := drain(req)

	s.mu.RLock()
	gate := s.gate
	outcome := s.outcome
	s.mu.RUnlock()

	if err == nil && gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			err = transfer.IOFailure(ctx.Err())
		}
	}
	if err == nil {
		err = outcome
	}

	s.mu.Lock()
	s.sendLog = append(s.sendLog, SendRecord{
		Address:   req.Address,
		FileName:  req.File.Name,
		Declared:  req.File.Size,
		BytesRead: n,
		Timestamp: time.Now().UnixNano(),
		Success:   err == nil,
		Error:     err,
	})
	total := len(s.sendLog)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":   "SimulatedSender.Send",
		"bytes_read": n,
		"success":    err == nil,
		"total_sent": total,
	}).Info("Upload simulated")

	return err
}

// drain reads the whole source and checks it against the declared size, the
// way a receiver enforcing Content-Length would.
func drain(req *transfer.Request) (int64, error) {
	rc, err := req.File.Open()
	if err != nil {
		return 0, transfer.IOFailure(fmt.Errorf("open %s: %w", req.File.ID, err))
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "SimulatedSender.drain",
				"error":    closeErr.Error(),
			}).Warn("Failed to close simulated source")
		}
	}()

	n, err := io.Copy(io.Discard, rc)
	if err != nil {
		return n, transfer.IOFailure(err)
	}
	if req.File.SizeKnown() && n != req.File.Size {
		return n, transfer.IOFailure(fmt.Errorf("declared %d bytes, source produced %d", req.File.Size, n))
	}
	return n, nil
}

// IsSimulation implements interfaces.ISender.IsSimulation
func (s *SimulatedSender) IsSimulation() bool {
	return true
}

// GetSendLog returns the complete send log for test verification
func (s *SimulatedSender) GetSendLog() []SendRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to prevent external modifications
	log := make([]SendRecord, len(s.sendLog))
	copy(log, s.sendLog)
	return log
}

// ClearSendLog clears the send log for test cleanup
func (s *SimulatedSender) ClearSendLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLog = make([]SendRecord, 0)
}

// GetStats returns statistics about the simulation
func (s *SimulatedSender) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	successCount := 0
	failedCount := 0
	var bytesRead int64
	for _, record := range s.sendLog {
		if record.Success {
			successCount++
		} else {
			failedCount++
		}
		bytesRead += record.BytesRead
	}

	return map[string]interface{}{
		"total_sends":      len(s.sendLog),
		"successful_sends": successCount,
		"failed_sends":     failedCount,
		"bytes_read":       bytesRead,
		"is_simulation":    true,
		"dial_timeout":     s.config.DialTimeout,
	}
}
