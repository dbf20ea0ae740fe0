package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size.
// Common bit sizes are 2048 (minimum recommended) and 4096 (high security).
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	err = privateKey.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privDER := x509.MarshalPKCS1PrivateKey(privateKey)
	privBlock := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: privDER,
	}
	privateKeyPEM := pem.EncodeToMemory(&privBlock)

	publicRsaKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	pubKeyBytes := ssh.MarshalAuthorizedKey(publicRsaKey)

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  pubKeyBytes,
	}, nil
}

// WriteKeyPair writes the private key to path and the public key to
// path + ".pub". Existing files are never overwritten.
func WriteKeyPair(kp *KeyPair, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := writeNew(path, kp.PrivateKey, 0600); err != nil {
		return err
	}
	if err := writeNew(path+".pub", kp.PublicKey, 0644); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// EnsureKeyPair generates a key pair at path unless a private key already
// exists there. It reports whether a new pair was written.
func EnsureKeyPair(path string, bits int) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check key %s: %w", path, err)
	}

	kp, err := GenerateRSAKeyPair(bits)
	if err != nil {
		return false, err
	}
	if err := WriteKeyPair(kp, path); err != nil {
		return false, err
	}
	return true, nil
}

func writeNew(path string, data []byte, mode os.FileMode) error {
	// #nosec G304
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
