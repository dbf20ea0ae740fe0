// Package guest provides the runbook steps that run inside the VM over the
// remote command channel: data disk layout and mount, resource disk swap,
// the Azure Files share mount and the data copy.
//
// Every step requires the VM to report PowerState/running before it
// touches the guest.
package guest
