// Package retry provides exponential backoff for establishing connections
// that become available only after a delay, such as SSH on a booting VM.
//
// [WithExponentialBackoff] retries an operation with configurable attempts
// and delays. Errors wrapped with [Fatal] stop the loop immediately.
// Provisioning steps themselves are never retried through this package.
package retry
