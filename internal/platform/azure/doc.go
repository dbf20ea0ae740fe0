// Package azure wraps the Azure Resource Manager SDK behind the Cloud
// interface used by the provisioning steps.
//
// Every Ensure* operation is get-or-create: an existing resource with the
// requested name is returned as is (after a compatibility check), a missing
// one is created and awaited. Long-running operations are polled to
// completion before returning.
package azure
