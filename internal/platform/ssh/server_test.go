package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

// testServer is a minimal in-process SSH server. For every exec request it
// writes "<command>|<stdin>" to stdout. The command "false" exits 1 and
// writes to stderr instead.
type testServer struct {
	addr     *net.TCPAddr
	accepted atomic.Int32
}

func startTestServer(t *testing.T, authorized ssh.PublicKey) *testServer {
	t.Helper()

	hostKey := generateTestKey(t)
	hostSigner, err := ssh.ParsePrivateKey(hostKey.PrivateKey)
	if err != nil {
		t.Fatalf("failed to parse host key: %v", err)
	}

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown public key")
		},
	}
	cfg.AddHostKey(hostSigner)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	srv := &testServer{addr: ln.Addr().(*net.TCPAddr)}
	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			srv.accepted.Add(1)
			go serveConn(nc, cfg)
		}
	}()
	return srv
}

func serveConn(nc net.Conn, cfg *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for nch := range chans {
		if nch.ChannelType() != "session" {
			_ = nch.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, chReqs, err := nch.Accept()
		if err != nil {
			continue
		}
		go serveSession(ch, chReqs)
	}
}

func serveSession(ch ssh.Channel, reqs <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()
	for req := range reqs {
		if req.Type != "exec" {
			_ = req.Reply(false, nil)
			continue
		}
		var payload struct{ Command string }
		if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
			_ = req.Reply(false, nil)
			continue
		}
		_ = req.Reply(true, nil)

		in, _ := io.ReadAll(ch)
		status := uint32(0)
		if payload.Command == "false" {
			status = 1
			_, _ = fmt.Fprint(ch.Stderr(), "permission denied")
		} else {
			_, _ = fmt.Fprintf(ch, "%s|%s", payload.Command, in)
		}
		_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
		return
	}
}

func newTestClient(t *testing.T) (*Client, *testServer) {
	t.Helper()
	keyPair := generateTestKey(t)
	pub, _, _, _, err := ssh.ParseAuthorizedKey(keyPair.PublicKey)
	if err != nil {
		t.Fatalf("failed to parse public key: %v", err)
	}
	srv := startTestServer(t, pub)

	client, err := NewClient(&Config{
		Host:       srv.addr.IP.String(),
		Port:       srv.addr.Port,
		User:       "azureuser",
		PrivateKey: keyPair.PrivateKey,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestRun_StdoutAndStdin(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	out, err := client.Run(ctx, "sudo sfdisk /dev/sdc", []byte("label: gpt\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "sudo sfdisk /dev/sdc|label: gpt\n" {
		t.Errorf("unexpected output %q", out)
	}

	out, err = client.Run(ctx, "uname", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "uname|" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRun_ReusesConnection(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := client.Run(ctx, "true", nil); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
	if got := srv.accepted.Load(); got != 1 {
		t.Errorf("expected 1 connection, got %d", got)
	}
}

func TestRun_CommandError(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Run(context.Background(), "false", nil)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got: %v", err)
	}
	if cmdErr.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", cmdErr.ExitCode)
	}
	if cmdErr.Stderr != "permission denied" {
		t.Errorf("unexpected stderr %q", cmdErr.Stderr)
	}
}

func TestConnect_WrongKeyIsNotRetried(t *testing.T) {
	authorized := generateTestKey(t)
	pub, _, _, _, err := ssh.ParseAuthorizedKey(authorized.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	srv := startTestServer(t, pub)

	other := generateTestKey(t)
	retries := 0
	client, err := NewClient(&Config{
		Host:       srv.addr.IP.String(),
		Port:       srv.addr.Port,
		User:       "azureuser",
		PrivateKey: other.PrivateKey,
		MaxRetries: 5,
		RetryDelay: 10 * time.Millisecond,
		OnRetry:    func(int, error) { retries++ },
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Run(context.Background(), "true", nil); err == nil {
		t.Fatal("expected authentication error")
	}
	if retries != 0 {
		t.Errorf("expected no retries for auth failure, got %d", retries)
	}
}
