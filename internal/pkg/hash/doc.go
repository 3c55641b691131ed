// Package hash provides keyed hashing for secrets kept at rest.
//
// Stored one-time codes are never kept in plaintext; they are hashed with an
// HMAC keyed by an application secret and compared in constant time.
package hash
