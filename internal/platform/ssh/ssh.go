package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/azrunbook/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 30
	defaultRetryDelay  = 5 * time.Second
	defaultMaxDelay    = 20 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// KnownHostsFile enables host key verification against an OpenSSH
	// known_hosts file. Ignored when HostKeyCallback is set.
	KnownHostsFile string

	// HostKeyCallback handles host key verification.
	HostKeyCallback ssh.HostKeyCallback

	// OnRetry is called for every failed connection attempt.
	OnRetry func(attempt int, err error)
}

// Client executes commands on a remote server via SSH.
type Client struct {
	config *Config
	signer ssh.Signer

	mu   sync.Mutex
	conn *ssh.Client
}

// CommandError reports a command that ran but exited unsuccessfully.
type CommandError struct {
	Host     string
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed on %s with exit code %d\nCommand: %s\nStderr: %s",
		e.Host, e.ExitCode, e.Command, e.Stderr)
}

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		if configCopy.KnownHostsFile != "" {
			cb, err := knownhosts.New(configCopy.KnownHostsFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load known hosts: %w", err)
			}
			configCopy.HostKeyCallback = cb
		} else {
			configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // freshly created VM, key unknown
		}
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Run executes a command on the remote host and returns its stdout.
// stdin, when non-nil, is fed to the command. The connection is established
// on first use and reused afterwards.
func (c *Client) Run(ctx context.Context, command string, stdin []byte) (string, error) {
	conn, err := c.connection(ctx)
	if err != nil {
		return "", err
	}

	session, err := conn.NewSession()
	if err != nil {
		c.reset()
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = bytes.NewReader(stdin)
	}

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return "", fmt.Errorf("command interrupted on %s: %w", c.config.Host, ctx.Err())
	case err := <-done:
		if err == nil {
			return stdout.String(), nil
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &CommandError{
				Host:     c.config.Host,
				Command:  command,
				ExitCode: exitErr.ExitStatus(),
				Stderr:   stderr.String(),
			}
		}
		c.reset()
		return stdout.String(), fmt.Errorf("command failed on %s: %w", c.config.Host, err)
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) connection(ctx context.Context) (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) reset() {
	_ = c.Close()
}

// connect establishes SSH connection with retry logic.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
	var client *ssh.Client

	opts := []retry.Option{
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	}
	if c.config.OnRetry != nil {
		opts = append(opts, retry.WithOnRetry(c.config.OnRetry))
	}

	err := retry.WithExponentialBackoff(ctx, func() error {
		if err := ctx.Err(); err != nil {
			return retry.Fatal(err)
		}
		var dialErr error
		client, dialErr = ssh.Dial("tcp", addr, config)
		if dialErr != nil && isAuthFailure(dialErr) {
			return retry.Fatal(dialErr)
		}
		return dialErr
	}, opts...)

	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}

	return client, nil
}

// isAuthFailure reports handshake errors that retrying cannot fix.
func isAuthFailure(err error) bool {
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		return true
	}
	return strings.Contains(err.Error(), "unable to authenticate")
}
