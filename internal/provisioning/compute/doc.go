// Package compute provides the control-plane steps of the runbook.
//
// Each step ensures one group of Azure resources exists (resource group,
// network, VM, data disk), attaches the disk or changes the VM power state.
// Steps record the identifiers of the resources they touched as handles in
// the workflow state; later steps read them back instead of querying the
// control plane by name.
package compute
