// Package guestos performs structured operations on the VM's operating
// system through a Runner: block device inspection, GPT partitioning,
// filesystem creation, fstab and waagent.conf edits, CIFS share mounts and
// the one-shot data copy.
//
// Every Ensure* function inspects the current state first and mutates only
// when the desired state is missing, so it is safe to call repeatedly.
// Configuration files are edited with a typed read-modify-write instead of
// in-place text substitution.
package guestos
