package transfer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/opd-ai/portalsend/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"bare_ip", "192.168.1.20", "192.168.1.20:8080", nil},
		{"ip_with_port", "192.168.1.20:9000", "192.168.1.20:9000", nil},
		{"empty_port", "192.168.1.20:", "192.168.1.20:8080", nil},
		{"hostname", "desk.local", "desk.local:8080", nil},
		{"scheme_and_slash", "http://10.0.0.2:8081/", "10.0.0.2:8081", nil},
		{"whitespace", "  10.0.0.2 ", "10.0.0.2:8080", nil},
		{"bare_ipv6", "fe80::1", "[fe80::1]:8080", nil},
		{"bracketed_ipv6", "[fe80::1]:7000", "[fe80::1]:7000", nil},
		{"empty", "", "", ErrNoReceiver},
		{"blank", "   ", "", ErrNoReceiver},
		{"path", "10.0.0.2/upload", "", ErrInvalidAddress},
		{"bad_port", "10.0.0.2:http", "", ErrInvalidAddress},
		{"port_out_of_range", "10.0.0.2:70000", "", ErrInvalidAddress},
		{"no_host", ":8080", "", ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.in, DefaultReceiverPort)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRequest(t *testing.T) {
	h := &file.Handle{ID: "a", Name: "a.pdf", Size: 1}

	req, err := NewRequest("10.0.0.5", 9090, h)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:9090", req.Address)
	assert.Equal(t, "http://10.0.0.5:9090/", req.URL())
	assert.Same(t, h, req.File)

	_, err = NewRequest("", 9090, h)
	f := Classify(err)
	require.NotNil(t, f)
	assert.Equal(t, ReasonConfiguration, f.Reason)
	assert.ErrorIs(t, err, ErrNoReceiver)

	_, err = NewRequest("10.0.0.5", 9090, nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestFileNameEncoding(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"a.pdf", "a.pdf"},
		{"my report.pdf", "my%20report.pdf"},
		{"a+b=c&d.txt", "a%2Bb%3Dc%26d.txt"},
		{"résumé.doc", "r%C3%A9sum%C3%A9.doc"},
		{"100%.png", "100%25.png"},
		{"report (final)!.pdf", "report%20(final)!.pdf"},
		{"it's*~.txt", "it's*~.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeFileName(tt.name)
			assert.Equal(t, tt.encoded, got)

			back, err := DecodeFileName(got)
			require.NoError(t, err)
			assert.Equal(t, tt.name, back)
		})
	}
}

func TestFailureMessages(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t, "io: connection refused", IOFailure(cause).Error())
	assert.Equal(t, "configuration: receiver address not configured", ConfigurationFailure(ErrNoReceiver).Error())
	assert.Equal(t, "server rejected upload: status 500: disk full", RejectionFailure(500, "disk full").Error())
	assert.Equal(t, "server rejected upload: status 403", RejectionFailure(403, "").Error())
	assert.ErrorIs(t, IOFailure(cause), cause)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	rejection := RejectionFailure(500, "disk full")
	wrapped := fmt.Errorf("send: %w", rejection)
	assert.Same(t, rejection, Classify(wrapped))

	plain := errors.New("boom")
	f := Classify(plain)
	require.NotNil(t, f)
	assert.Equal(t, ReasonIO, f.Reason)
	assert.ErrorIs(t, f, plain)
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "configuration", ReasonConfiguration.String())
	assert.Equal(t, "io", ReasonIO.String())
	assert.Equal(t, "server_rejection", ReasonServerRejection.String())
	assert.Equal(t, "reason(0)", Reason(0).String())
}
