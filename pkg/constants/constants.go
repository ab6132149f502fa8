// Package constants provides shared constants used throughout bibsync.
// This includes match thresholds, service limits, timeouts and file
// permissions that should be consistent across packages.
package constants

import "time"

// Match thresholds on the 0-100 token set similarity scale
const (
	// AuthorMatchThreshold is the minimum score for a fuzzy author name match
	AuthorMatchThreshold = 75

	// ArticleMatchThreshold is the minimum score for a fuzzy article title match
	ArticleMatchThreshold = 95
)

// Timeout constants
const (
	// DefaultHTTPTimeout is the standard timeout for a single HTTP request
	DefaultHTTPTimeout = 30 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// Limit constants
const (
	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries = 3

	// DefaultPageSize is the number of records requested per listing page
	DefaultPageSize = 100

	// MaxOptionLength is the longest select option name the service accepts
	MaxOptionLength = 100

	// MaxTextLength is the longest rich text segment the service accepts
	MaxTextLength = 2000

	// DefaultRateLimit is the sustained request rate, in requests per second
	DefaultRateLimit = 3.0
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecretFilePermissions is used for files that may hold a token (rw-------)
	SecretFilePermissions = 0600
)

// Service constants
const (
	// NotionBaseURL is the root of the Notion REST API
	NotionBaseURL = "https://api.notion.com/v1"

	// NotionVersion is the API version sent with every request
	NotionVersion = "2022-06-28"

	// AppName names the configuration directory and default files
	AppName = "bibsync"
)
