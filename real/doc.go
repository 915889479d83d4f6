// Package real provides the production HTTP sender for portalsend.
//
// This package implements the interfaces.ISender interface with a single
// streaming POST per call. It serves as the production implementation,
// distinct from the simulated sender in the testing package.
//
// # Wire Format
//
//	POST http://{receiverAddress}/
//	file-name: <URL-encoded display name>
//	Content-Type: <resolved type or application/octet-stream>
//	Content-Length: <exact size>         (size known)
//	Transfer-Encoding: chunked           (size unknown)
//
//	<raw file bytes>
//
// # Usage
//
//	sender := real.NewHTTPSender(&interfaces.SenderConfig{
//	    DialTimeout: 10000,
//	})
//	sender.OnProgress(func(sent, total int64, bytesPerSec float64) {
//	    fmt.Printf("%d/%d at %.0f B/s\n", sent, total, bytesPerSec)
//	})
//	err := sender.Send(ctx, req)
//
// # Result Semantics
//
//   - 2xx: success (nil error)
//   - any other status, including redirects: *transfer.Failure with
//     ReasonServerRejection, the status code and up to
//     limits.MaxResponseSnippet bytes of the response body
//   - open, connect, write or read fault: *transfer.Failure with ReasonIO
//
// There is no retry and no timeout on the streaming phase. Only connection
// setup is bounded by SenderConfig.DialTimeout. Cancelling the context
// abandons the upload.
//
// # Memory
//
// The body is read from the source in the transport's buffer-sized pieces.
// The file is never held in memory as a whole.
//
// # Thread Safety
//
// HTTPSender is safe for concurrent use. Counters are available through
// Stats().
package real
