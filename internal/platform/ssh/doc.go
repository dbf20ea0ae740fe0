// Package ssh provides the remote command channel to the provisioned VM.
//
// A Client keeps one connection open for the lifetime of a workflow run and
// opens a session per command. Connection establishment is retried with
// exponential backoff because sshd becomes reachable only some time after
// the VM reports running. Commands themselves are never retried.
//
// Host keys are checked against a known_hosts file when one is configured.
// Without it any host key is accepted, which suits freshly created VMs whose
// key is not known in advance.
package ssh
