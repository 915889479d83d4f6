// Package limits provides centralized size constants and validation functions
// for portalsend uploads. This package ensures consistent enforcement between
// the sending side and the receiving side.
//
// # Size Hierarchy
//
//   - MaxFileNameLength (255 bytes): The longest display name carried in the
//     file-name header. Longer names are truncated by the resolver and rejected
//     by the receiver.
//
//   - MaxEncodedFileName (765 bytes): The longest URL-encoded header value. Each
//     byte of the name expands to at most three bytes (%XX).
//
//   - MaxResponseSnippet (512 bytes): How much of a rejecting receiver's response
//     body is kept for display.
//
// # Validation Functions
//
//	if err := limits.ValidateFileName(name); err != nil {
//	    // ErrNameEmpty or ErrNameTooLong
//	}
//
// Snippets are built from raw response bytes:
//
//	snippet := limits.Snippet(body)
//
// # Error Types
//
//   - ErrNameEmpty: Returned when an empty name is provided
//   - ErrNameTooLong: Returned when a name exceeds MaxFileNameLength
package limits
