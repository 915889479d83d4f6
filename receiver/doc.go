// Package receiver implements the peer side of an upload: an HTTP endpoint
// accepting POST / with the file name in the file-name header and the raw
// file bytes as the body.
//
// Names are URL-decoded and reduced to a base name before touching the
// filesystem. An existing file is never overwritten; "report.pdf" becomes
// "report (1).pdf" and so on.
//
// Responses:
//
//	200  body is the number of bytes stored
//	400  missing or invalid file-name, or the body ended early
//	507  the file could not be written; body is the error text
package receiver
