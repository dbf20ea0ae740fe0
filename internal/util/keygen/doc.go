// Package keygen generates RSA key pairs for SSH authentication.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public). The public key is installed for the VM admin user and
// the private key is used for remote command execution.
package keygen
