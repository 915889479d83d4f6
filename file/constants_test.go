package file

// Test content identifiers.
const (
	testContentURI  = "content://media/external/downloads/1234"
	testContentName = "a.pdf"
	testContentType = "application/pdf"
)

// Common test file size constants.
const (
	testFileSize1KB = 1024
	testFileSize1MB = 1048576
)
