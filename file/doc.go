// Package file resolves shared content into transferable handles for
// portalsend uploads.
//
// # Overview
//
// The file package provides three components:
//
//   - Source: the capability a platform adapter implements for a piece of
//     shared content (name, size, content type, byte stream)
//   - Handle: the immutable, resolved view of a Source used by an upload
//   - ProgressReader: a counting stream wrapper with a smoothed speed estimate
//
// # Resolution
//
// Resolve never fails. Each metadata field degrades on its own:
//
//	handle := file.Resolve(src)
//	// Name falls back to the identifier's trailing path segment, then "shared_file"
//	// Size falls back to file.UnknownSize
//	// ContentType falls back to ""
//
// A size that could not be read forces a chunked upload even when the file
// has a perfectly good length. Resolve logs this at Warn level with the field
// "fallback": "chunked" so the case can be spotted in the field.
//
// # Adapters
//
// Two adapters ship with the package:
//
//	// A path on disk; pipes and devices report unknown size
//	src, err := file.NewLocalSource("/home/me/a.pdf")
//
//	// Any opener, such as standard input
//	src := file.NewStreamSource("stdin", "clip.txt", file.UnknownSize, "text/plain",
//	    func() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil })
//
// # Security
//
// Path Validation: Directory traversal attempts are rejected:
//
//	if _, err := file.ValidatePath(path); err != nil {
//	    // err == file.ErrDirectoryTraversal
//	}
//
// Display names are truncated to limits.MaxFileNameLength bytes.
//
// # Progress Tracking
//
//	pr := file.NewProgressReader(rc)
//	pr.OnProgress(func(sent int64, bytesPerSec float64) {
//	    fmt.Printf("%d bytes, %.0f B/s\n", sent, bytesPerSec)
//	})
//
// # Deterministic Testing
//
// For reproducible speed calculations, inject a TimeProvider:
//
//	pr.SetTimeProvider(&mockTimeProvider{fixedTime})
//
// # Thread Safety
//
// Handle is immutable. ProgressReader guards its counters with a mutex;
// callbacks are invoked synchronously from Read.
package file
