package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPSource reads files from an SFTP server. A new session is opened per read.
type SFTPSource struct {
	addr    string
	root    string
	config  *ssh.ClientConfig
	timeout time.Duration
}

// NewSFTPSource creates an SFTP source from cfg.
func NewSFTPSource(cfg Config) (*SFTPSource, error) {
	if cfg.Host == "" {
		return nil, errors.New("sftp connection requires a host")
	}

	hostKey := ssh.InsecureIgnoreHostKey()
	if cfg.HostKey != "" {
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(cfg.HostKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse sftp host key: %w", err)
		}
		hostKey = ssh.FixedHostKey(key)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	addr := cfg.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "22")
	}

	return &SFTPSource{
		addr: addr,
		root: cfg.Root,
		config: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
			HostKeyCallback: hostKey,
			Timeout:         timeout,
		},
		timeout: timeout,
	}, nil
}

// ReadBytes downloads the file at root/p.
func (s *SFTPSource) ReadBytes(ctx context.Context, p string) ([]byte, error) {
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial sftp %s: %w", s.addr, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, s.addr, s.config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open ssh session to %s: %w", s.addr, err)
	}
	sshClient := ssh.NewClient(c, chans, reqs)
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, fmt.Errorf("failed to start sftp subsystem: %w", err)
	}
	defer client.Close()

	full := path.Join(s.root, p)
	f, err := client.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: sftp://%s/%s", ErrNotFound, s.addr, full)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open sftp://%s/%s: %w", s.addr, full, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read sftp://%s/%s: %w", s.addr, full, err)
	}
	return data, nil
}
