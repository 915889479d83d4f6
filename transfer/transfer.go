// Package transfer defines the upload request and its failure taxonomy.
//
// A Request is built fresh for every commit from the receiver address read
// at commit time and a resolved file handle. Senders report success as a nil
// error and failure as a *Failure.
package transfer

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/opd-ai/portalsend/file"
)

// DefaultReceiverPort is appended to stored receiver addresses that carry no port.
const DefaultReceiverPort = 8080

// FileNameHeader carries the URL-encoded display name of the uploaded file.
const FileNameHeader = "file-name"

// ErrNoReceiver indicates no receiver address is configured.
var ErrNoReceiver = errors.New("receiver address not configured")

// ErrInvalidAddress indicates the configured receiver address cannot be used.
var ErrInvalidAddress = errors.New("invalid receiver address")

// ErrNoFile indicates a request was built without a file handle.
var ErrNoFile = errors.New("no file to send")

// Request is a single upload attempt. It is never reused across commits.
type Request struct {
	Address string
	File    *file.Handle
}

// NewRequest validates address, appends defaultPort when it has none, and
// pairs it with h. An empty address yields a configuration failure wrapping
// ErrNoReceiver.
func NewRequest(address string, defaultPort int, h *file.Handle) (*Request, error) {
	if h == nil {
		return nil, ConfigurationFailure(ErrNoFile)
	}
	normalized, err := NormalizeAddress(address, defaultPort)
	if err != nil {
		return nil, ConfigurationFailure(err)
	}
	return &Request{Address: normalized, File: h}, nil
}

// URL returns the upload endpoint.
func (r *Request) URL() string {
	return "http://" + r.Address + "/"
}

// NormalizeAddress turns a stored address into host:port form. It accepts a
// bare host or IP, host:port, a bracketed or bare IPv6 address, and tolerates
// a leading http:// and a trailing slash.
func NormalizeAddress(address string, defaultPort int) (string, error) {
	a := strings.TrimSpace(address)
	a = strings.TrimPrefix(a, "http://")
	a = strings.TrimRight(a, "/")
	if a == "" {
		return "", ErrNoReceiver
	}
	if strings.ContainsAny(a, "/?# ") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	host, port, err := net.SplitHostPort(a)
	if err != nil {
		host = strings.Trim(a, "[]")
		port = ""
	}
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidAddress, address)
	}
	if port == "" {
		if defaultPort <= 0 {
			defaultPort = DefaultReceiverPort
		}
		port = strconv.Itoa(defaultPort)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return "", fmt.Errorf("%w: bad port %q", ErrInvalidAddress, port)
	}

	return net.JoinHostPort(host, port), nil
}

// uriComponentUnescaper restores the marks a URI component leaves
// unescaped but url.QueryEscape encodes.
var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeFileName encodes name as a URI component: letters, digits and
// "-_.!~*'()" pass through and spaces become %20 rather than '+'.
func EncodeFileName(name string) string {
	return uriComponentUnescaper.Replace(url.QueryEscape(name))
}

// DecodeFileName reverses EncodeFileName. A literal '+' is kept as is.
func DecodeFileName(value string) (string, error) {
	return url.PathUnescape(value)
}
