package real

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/opd-ai/portalsend/file"
	"github.com/opd-ai/portalsend/interfaces"
	"github.com/opd-ai/portalsend/limits"
	"github.com/opd-ai/portalsend/transfer"
	"github.com/sirupsen/logrus"
)

// maxDrainBytes bounds how much of a successful response is read before the
// connection is released.
const maxDrainBytes = 64 * 1024

// SendStats is a snapshot of sender activity.
type SendStats struct {
	Attempts  int
	Succeeded int
	Failed    int
	BytesSent int64
}

// HTTPSender implements interfaces.ISender with a streaming HTTP POST.
type HTTPSender struct {
	client *http.Client
	config *interfaces.SenderConfig

	mu               sync.RWMutex
	progressCallback func(sent, total int64, bytesPerSec float64)
	stats            SendStats
}

// NewHTTPSender creates a sender whose dial step is bounded by
// config.DialTimeout. The client itself has no timeout, so a large upload
// runs until the source is exhausted and the receiver answers.
func NewHTTPSender(config *interfaces.SenderConfig) *HTTPSender {
	logrus.WithFields(logrus.Fields{
		"function":     "NewHTTPSender",
		"dial_timeout": config.DialTimeout,
	}).Info("Creating HTTP sender")

	dialer := &net.Dialer{
		Timeout:   time.Duration(config.DialTimeout) * time.Millisecond,
		KeepAlive: 30 * time.Second,
	}
	client := &http.Client{
		Transport: &http.Transport{
			Proxy:             nil, // receivers live on the local network
			DialContext:       dialer.DialContext,
			ForceAttemptHTTP2: false,
		},
		CheckRedirect: noRedirects,
	}
	return NewHTTPSenderWithClient(client, config)
}

// NewHTTPSenderWithClient creates a sender around an existing client
// (primarily for testing). Redirects are disabled on the client.
func NewHTTPSenderWithClient(client *http.Client, config *interfaces.SenderConfig) *HTTPSender {
	client.CheckRedirect = noRedirects
	return &HTTPSender{
		client: client,
		config: config,
	}
}

// noRedirects makes a 3xx answer count as a rejection instead of a second
// network attempt.
func noRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// OnProgress sets a callback invoked as bytes leave the source, with the
// smoothed upload speed. total is file.UnknownSize for chunked uploads. This
// method is safe for concurrent use.
func (s *HTTPSender) OnProgress(callback func(sent, total int64, bytesPerSec float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressCallback = callback
}

// IsSimulation implements interfaces.ISender.
func (s *HTTPSender) IsSimulation() bool {
	return false
}

// Stats returns a copy of the sender counters.
func (s *HTTPSender) Stats() SendStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Send implements interfaces.ISender. It makes exactly one request and never
// retries. The source stream is closed on every path.
func (s *HTTPSender) Send(ctx context.Context, req *transfer.Request) error {
	if req == nil || req.File == nil {
		return transfer.ConfigurationFailure(transfer.ErrNoFile)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "HTTPSender.Send",
		"url":       req.URL(),
		"file_name": req.File.Name,
		"file_size": req.File.Size,
		"chunked":   !req.File.SizeKnown(),
	}).Info("Starting upload")

	s.mu.Lock()
	s.stats.Attempts++
	s.mu.Unlock()

	sent, err := s.send(ctx, req)

	s.mu.Lock()
	s.stats.BytesSent += sent
	if err != nil {
		s.stats.Failed++
	} else {
		s.stats.Succeeded++
	}
	s.mu.Unlock()

	if err != nil {
		f := transfer.Classify(err)
		logrus.WithFields(logrus.Fields{
			"function":  "HTTPSender.Send",
			"url":       req.URL(),
			"file_name": req.File.Name,
			"reason":    f.Reason.String(),
			"status":    f.Status,
			"sent":      sent,
			"error":     err.Error(),
		}).Error("Upload failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":  "HTTPSender.Send",
		"url":       req.URL(),
		"file_name": req.File.Name,
		"sent":      sent,
	}).Info("Upload accepted by receiver")
	return nil
}

// send performs the request and returns the number of source bytes consumed.
func (s *HTTPSender) send(ctx context.Context, req *transfer.Request) (int64, error) {
	src, err := req.File.Open()
	if err != nil {
		return 0, transfer.IOFailure(fmt.Errorf("open %s: %w", req.File.ID, err))
	}

	body := file.NewProgressReader(src)
	s.mu.RLock()
	callback := s.progressCallback
	s.mu.RUnlock()
	if callback != nil {
		total := req.File.Size
		body.OnProgress(func(sent int64, bytesPerSec float64) { callback(sent, total, bytesPerSec) })
	}
	// Close is idempotent; the transport closes the body too. A close error
	// is logged by the reader and never changes the result.
	defer body.Close()

	httpReq, err := newUploadRequest(ctx, req, body)
	if err != nil {
		return 0, transfer.ConfigurationFailure(err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return body.Transferred(), transfer.IOFailure(unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, limits.MaxResponseSnippet))
		if readErr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "HTTPSender.send",
				"status":   resp.StatusCode,
				"error":    readErr.Error(),
			}).Debug("Partial rejection body")
		}
		return body.Transferred(), transfer.RejectionFailure(resp.StatusCode, limits.Snippet(raw))
	}

	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)); err != nil {
		return body.Transferred(), transfer.IOFailure(fmt.Errorf("read response: %w", err))
	}
	return body.Transferred(), nil
}

// newUploadRequest builds the POST. A known size is declared as the exact
// content length; an unknown size leaves the length undeclared so the body is
// sent chunked.
func newUploadRequest(ctx context.Context, req *transfer.Request, body io.ReadCloser) (*http.Request, error) {
	var reqBody io.Reader = body
	if req.File.Size == 0 {
		// A zero length with a non-nil body would be treated as unknown.
		reqBody = http.NoBody
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL(), reqBody)
	if err != nil {
		return nil, err
	}

	if req.File.SizeKnown() {
		httpReq.ContentLength = req.File.Size
	} else {
		httpReq.ContentLength = -1
	}

	httpReq.Header.Set(transfer.FileNameHeader, transfer.EncodeFileName(req.File.Name))
	contentType := req.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	httpReq.Header.Set("Content-Type", contentType)

	return httpReq, nil
}

// unwrapURLError drops the *url.Error wrapper so failure messages read
// "dial tcp ...: connection refused" instead of repeating the method and URL.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
