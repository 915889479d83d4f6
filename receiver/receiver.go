package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opd-ai/portalsend/transfer"
	"github.com/sirupsen/logrus"
)

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 5 * time.Second

// Received describes one stored upload.
type Received struct {
	Name     string
	Path     string
	Size     int64
	Duration time.Duration
}

// Receiver stores uploads in a directory.
type Receiver struct {
	dir    string
	engine *gin.Engine

	mu         sync.Mutex
	onReceived func(Received)
}

// New creates a Receiver writing into dir, creating it if needed.
func New(dir string) (*Receiver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("receiver: create %s: %w", dir, err)
	}

	r := &Receiver{dir: dir}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	r.RegisterRoutes(engine.Group(""))
	r.engine = engine
	return r, nil
}

// RegisterRoutes installs the upload endpoint on grp.
func (r *Receiver) RegisterRoutes(grp *gin.RouterGroup) {
	grp.POST("/", r.upload)
}

// Handler returns the HTTP handler serving uploads.
func (r *Receiver) Handler() http.Handler { return r.engine }

// Dir returns the storage directory.
func (r *Receiver) Dir() string { return r.dir }

// OnReceived sets a callback invoked after each stored upload.
func (r *Receiver) OnReceived(fn func(Received)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReceived = fn
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (r *Receiver) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"function": "Receiver.ListenAndServe",
			"addr":     addr,
			"dir":      r.dir,
		}).Info("Receiver listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("receiver: shutdown: %w", err)
		}
		return nil
	}
}

func (r *Receiver) upload(ctx *gin.Context) {
	start := time.Now()
	name, err := SanitizeName(ctx.GetHeader(transfer.FileNameHeader))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Receiver.upload",
			"header":   ctx.GetHeader(transfer.FileNameHeader),
			"error":    err.Error(),
		}).Warn("Rejected upload with invalid file name")
		ctx.String(http.StatusBadRequest, err.Error())
		return
	}

	n, dest, err := r.store(name, ctx.Request.Body)
	if err != nil {
		var werr *writeError
		status := http.StatusBadRequest
		if errors.As(err, &werr) {
			status = http.StatusInsufficientStorage
		}
		logrus.WithFields(logrus.Fields{
			"function": "Receiver.upload",
			"name":     name,
			"received": n,
			"status":   status,
			"error":    err.Error(),
		}).Error("Upload failed")
		ctx.String(status, err.Error())
		return
	}

	rec := Received{Name: filepath.Base(dest), Path: dest, Size: n, Duration: time.Since(start)}
	logrus.WithFields(logrus.Fields{
		"function": "Receiver.upload",
		"name":     rec.Name,
		"size":     rec.Size,
		"chunked":  ctx.Request.ContentLength < 0,
	}).Info("Stored upload")

	r.mu.Lock()
	fn := r.onReceived
	r.mu.Unlock()
	if fn != nil {
		fn(rec)
	}

	ctx.String(http.StatusOK, strconv.FormatInt(n, 10))
}

// writeError marks failures on the storage side.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// trackingWriter remembers whether a write failed so that storage faults
// can be told apart from a body that ended early.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

// store streams body into a fresh file for name. A partial file is removed.
func (r *Receiver) store(name string, body io.Reader) (int64, string, error) {
	f, dest, err := r.create(name)
	if err != nil {
		return 0, "", &writeError{err: err}
	}

	tw := &trackingWriter{w: f}
	n, copyErr := io.Copy(tw, body)
	closeErr := f.Close()

	switch {
	case copyErr != nil && tw.err != nil:
		err = &writeError{err: fmt.Errorf("write %s: %w", filepath.Base(dest), copyErr)}
	case copyErr != nil:
		err = fmt.Errorf("incomplete upload: %w", copyErr)
	case closeErr != nil:
		err = &writeError{err: fmt.Errorf("close %s: %w", filepath.Base(dest), closeErr)}
	}
	if err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Receiver.store",
				"path":     dest,
				"error":    rmErr.Error(),
			}).Warn("Failed to remove partial upload")
		}
		return n, "", err
	}
	return n, dest, nil
}

// create opens a new file for name without overwriting existing ones.
func (r *Receiver) create(name string) (*os.File, string, error) {
	for n := 0; n <= maxCollisionSuffix; n++ {
		dest := filepath.Join(r.dir, candidateName(name, n))
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, dest, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free name for %s in %s", name, r.dir)
}

// requestLogger logs each request through logrus.
func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		logrus.WithFields(logrus.Fields{
			"function": "receiver.requestLogger",
			"method":   ctx.Request.Method,
			"path":     ctx.Request.URL.Path,
			"status":   ctx.Writer.Status(),
			"latency":  time.Since(start).String(),
			"client":   ctx.ClientIP(),
		}).Debug("Handled request")
	}
}
