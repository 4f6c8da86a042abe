// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package ssh keeps a pool of SSH connections to configured hosts and runs
// one-shot remote commands over them. Remote targets use it to read and
// write files.
package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"blockfix/internal/config"
	"blockfix/internal/logger"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

const dialTimeout = 10 * time.Second

// Manager handles SSH connections to remote hosts.
// Clients are cached per host name and reused while they answer keepalives.
type Manager struct {
	clients map[string]*ssh.Client
	mu      sync.Mutex
}

// NewManager creates and initializes a new SSH connection manager
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*ssh.Client),
	}
}

// GetClient returns an established SSH client for the specified host configuration.
func (m *Manager) GetClient(hostConfig config.SSHHost) (*ssh.Client, error) {
	m.mu.Lock()
	client, found := m.clients[hostConfig.Name]
	if found {
		// A failed keepalive means the cached connection is stale.
		_, _, err := client.SendRequest("keepalive@openssh.com", true, nil)
		if err == nil {
			m.mu.Unlock()
			return client, nil
		}
		if err := client.Close(); err != nil {
			logger.Error("closing stale ssh client", "host", hostConfig.Name, "error", err)
		}
		delete(m.clients, hostConfig.Name)
	}
	m.mu.Unlock() // Unlock before potentially long Dial operation

	authMethods, err := getAuthMethods(hostConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare auth methods for %s: %w", hostConfig.Name, err)
	}
	if len(authMethods) == 0 {
		return nil, fmt.Errorf("no suitable authentication method found for %s (key, agent, or password required)", hostConfig.Name)
	}

	hostKeyCallback, err := createHostKeyCallback()
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            hostConfig.User,
		Auth:            authMethods,
		Timeout:         dialTimeout,
		HostKeyCallback: hostKeyCallback,
	}

	port := hostConfig.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(hostConfig.Hostname, fmt.Sprint(port))

	logger.Debug("dialing ssh host", "host", hostConfig.Name, "addr", addr)
	newClient, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ssh host %s (%s): %w", hostConfig.Name, addr, err)
	}

	m.mu.Lock()
	// Another goroutine may have connected while we were dialing.
	existingClient, found := m.clients[hostConfig.Name]
	if found {
		m.mu.Unlock()
		if err := newClient.Close(); err != nil {
			logger.Error("closing redundant ssh client", "host", hostConfig.Name, "error", err)
		}
		return existingClient, nil
	}
	m.clients[hostConfig.Name] = newClient
	m.mu.Unlock()

	return newClient, nil
}

// getAuthMethods collects, in order: the configured private key, the
// running ssh-agent, and the configured password.
func getAuthMethods(hostConfig config.SSHHost) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if hostConfig.KeyPath != "" {
		keyPath, resolveErr := config.ResolvePath(hostConfig.KeyPath)
		if resolveErr != nil {
			logger.Warn("could not resolve key path", "path", hostConfig.KeyPath, "error", resolveErr)
			keyPath = hostConfig.KeyPath
		}

		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file %s: %w", keyPath, err)
		}

		signer, err := ssh.ParsePrivateKey(key)
		var passErr *ssh.PassphraseMissingError
		switch {
		case errors.As(err, &passErr):
			// Encrypted keys are left to the agent.
			logger.Warn("private key is encrypted, skipping it", "path", keyPath)
		case err != nil:
			return nil, fmt.Errorf("failed to parse private key file %s: %w", keyPath, err)
		default:
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			agentClient := agent.NewClient(conn)
			methods = append(methods, ssh.PublicKeysCallback(agentClient.Signers))
		}
	}

	if hostConfig.Password != "" {
		methods = append(methods, ssh.Password(hostConfig.Password))
	}

	return methods, nil
}

// Run executes cmd on host, feeding it stdin when non-nil, and returns
// its standard output. Stderr is folded into the error on failure.
// Cancelling ctx closes the session.
func (m *Manager) Run(ctx context.Context, host config.SSHHost, cmd string, stdin io.Reader) ([]byte, error) {
	client, err := m.GetClient(host)
	if err != nil {
		return nil, fmt.Errorf("failed to get ssh client for %s: %w", host.Name, err)
	}

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh session for %s: %w", host.Name, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = stdin
	}

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				return nil, fmt.Errorf("remote command on %s exited with status %d: %s", host.Name, exitErr.ExitStatus(), bytes.TrimSpace(stderr.Bytes()))
			}
			return nil, fmt.Errorf("remote command on %s failed: %w", host.Name, err)
		}
	}
	return stdout.Bytes(), nil
}

// CloseAll closes all active SSH connections managed by this Manager.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, client := range m.clients {
		if err := client.Close(); err != nil {
			logger.Error("closing ssh client", "host", name, "error", err)
		}
		delete(m.clients, name)
	}
}

// createHostKeyCallback verifies host keys against ~/.ssh/known_hosts.
// When that file does not exist every key is accepted, with a warning.
func createHostKeyCallback() (ssh.HostKeyCallback, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory for known_hosts: %w", err)
	}
	knownHostsPath := filepath.Join(homeDir, ".ssh", "known_hosts")

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("known_hosts not found, host keys will not be verified", "path", knownHostsPath)
			return ssh.InsecureIgnoreHostKey(), nil
		}
		return nil, fmt.Errorf("failed to load or parse known_hosts file %s: %w", knownHostsPath, err)
	}
	return callback, nil
}
