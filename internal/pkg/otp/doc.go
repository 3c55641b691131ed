// Package otp generates short-lived numeric one-time codes.
//
// Codes are drawn uniformly from the full digit range using crypto/rand and
// rendered with leading zeros preserved, so "004213" is as likely as any
// other six-digit value.
package otp
