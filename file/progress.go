package file

import (
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Since returns the duration since t.
func (DefaultTimeProvider) Since(t time.Time) time.Duration { return time.Since(t) }

// defaultTimeProvider is the package-level default time provider.
var defaultTimeProvider TimeProvider = DefaultTimeProvider{}

// ProgressReader counts bytes as they are pulled from an underlying stream and
// keeps a smoothed transfer speed. It never buffers more than the caller's
// read slice.
type ProgressReader struct {
	rc io.ReadCloser

	mu               sync.Mutex
	transferred      int64
	transferSpeed    float64 // bytes per second
	lastChunkTime    time.Time
	timeProvider     TimeProvider
	progressCallback func(sent int64, bytesPerSec float64)
	closed           bool
}

// NewProgressReader wraps rc.
func NewProgressReader(rc io.ReadCloser) *ProgressReader {
	tp := defaultTimeProvider
	return &ProgressReader{
		rc:            rc,
		lastChunkTime: tp.Now(),
		timeProvider:  tp,
	}
}

// SetTimeProvider sets a custom time provider for deterministic testing.
// Also resets lastChunkTime to the new provider's current time.
func (p *ProgressReader) SetTimeProvider(tp TimeProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeProvider = tp
	p.lastChunkTime = tp.Now()
}

// OnProgress sets a callback invoked with the running byte count and the
// smoothed speed after every non-empty read. This method is safe for
// concurrent use.
func (p *ProgressReader) OnProgress(callback func(sent int64, bytesPerSec float64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progressCallback = callback
}

// Read implements io.Reader.
func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.rc.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.transferred += int64(n)
		p.updateTransferSpeed(int64(n))
		transferred := p.transferred
		speed := p.transferSpeed
		callback := p.progressCallback
		p.mu.Unlock()

		if callback != nil {
			callback(transferred, speed)
		}
	}
	return n, err
}

// Close closes the underlying stream once. A close failure is logged and
// reported to the caller, but later calls return nil.
func (p *ProgressReader) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	transferred := p.transferred
	p.mu.Unlock()

	err := p.rc.Close()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "ProgressReader.Close",
			"transferred": transferred,
			"error":       err.Error(),
		}).Warn("Failed to close source stream")
	}
	return err
}

// updateTransferSpeed calculates the current transfer speed.
func (p *ProgressReader) updateTransferSpeed(chunkSize int64) {
	now := p.timeProvider.Now()
	duration := p.timeProvider.Since(p.lastChunkTime).Seconds()

	if duration > 0 {
		instantSpeed := float64(chunkSize) / duration

		// Exponential moving average with alpha = 0.3
		if p.transferSpeed == 0 {
			p.transferSpeed = instantSpeed
		} else {
			p.transferSpeed = 0.7*p.transferSpeed + 0.3*instantSpeed
		}
	}

	p.lastChunkTime = now
}

// Transferred returns the number of bytes read so far.
func (p *ProgressReader) Transferred() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transferred
}
