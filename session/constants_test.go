package session

import "time"

const (
	testAddress     = "192.168.1.20"
	testPresenting  = 300 * time.Millisecond
	testDismiss     = 3000 * time.Millisecond
	waitTimeout     = 2 * time.Second
	pollInterval    = 5 * time.Millisecond
	quietPeriod     = 50 * time.Millisecond
	testPayloadSize = 4096
)
