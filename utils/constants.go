// File: utils/constants.go
package utils

// SessionCachePrefix is the prefix used for Redis session keys.
const SessionCachePrefix = "session:"

// FixedUserAgent identifies the assistant on calls to its collaborators.
const FixedUserAgent = "medibot-assistant/1.0"
