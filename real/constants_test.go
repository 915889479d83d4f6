package real

// testDialTimeout is the dial timeout in milliseconds used by test senders.
const testDialTimeout = 2000

// Common test file size constants.
const (
	testFileSize1KB = 1024
	testFileSize1MB = 1048576
)
