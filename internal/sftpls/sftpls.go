// Package sftpls lists remote directories over a direct SSH connection,
// without going through a connector. It authenticates with credentials from
// Secrets Manager and classifies entries by what the remote server reports.
package sftpls

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"sort"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/sftpflow/sftpflow/internal/secrets"
)

const defaultTimeout = 30 * time.Second

// Config locates the remote SFTP server.
type Config struct {
	// Addr is host or host:port; the port defaults to 22.
	Addr string
	// HostKey optionally pins the server's public key, in authorized_keys
	// format. When empty any host key is accepted.
	HostKey string
	Timeout time.Duration
}

// fetcher resolves the credential secret.
type fetcher interface {
	Fetch(ctx context.Context, secretID string) (*secrets.Credentials, error)
}

// session is the slice of an SFTP client the lister uses.
type session interface {
	ReadDir(p string) ([]os.FileInfo, error)
	Stat(p string) (os.FileInfo, error)
	Close() error
}

// Lister lists directories on one remote server.
type Lister struct {
	creds    fetcher
	secretID string
	cfg      Config

	// open dials and authenticates a session. Swapped in tests.
	open func(ctx context.Context, creds *secrets.Credentials) (session, error)
}

func NewLister(creds fetcher, secretID string, cfg Config) *Lister {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.Addr = withDefaultPort(cfg.Addr)
	l := &Lister{creds: creds, secretID: secretID, cfg: cfg}
	l.open = l.dial
	return l
}

// List returns the full paths of the files in remoteDir, sorted. Directories
// are excluded. Symlinks are classified by their target; an entry whose
// target cannot be stat'ed is kept as a file.
func (l *Lister) List(ctx context.Context, remoteDir string) ([]string, error) {
	creds, err := l.creds.Fetch(ctx, l.secretID)
	if err != nil {
		return nil, err
	}

	sess, err := l.open(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", l.cfg.Addr, err)
	}
	defer sess.Close()

	entries, err := sess.ReadDir(remoteDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", remoteDir, err)
	}

	var files []string
	for _, entry := range entries {
		full := path.Join(remoteDir, entry.Name())
		mode := entry.Mode()
		if mode&os.ModeSymlink != 0 {
			info, err := sess.Stat(full)
			if err != nil {
				zap.S().Debugw("stat failed, keeping entry as file", "path", full, "error", err)
				files = append(files, full)
				continue
			}
			mode = info.Mode()
		}
		if mode.IsDir() {
			continue
		}
		files = append(files, full)
	}
	sort.Strings(files)
	return files, nil
}

func (l *Lister) dial(ctx context.Context, creds *secrets.Credentials) (session, error) {
	cfg := &ssh.ClientConfig{
		User:            creds.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         l.cfg.Timeout,
	}
	if l.cfg.HostKey != "" {
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(l.cfg.HostKey))
		if err != nil {
			return nil, fmt.Errorf("parsing pinned host key: %w", err)
		}
		cfg.HostKeyCallback = ssh.FixedHostKey(key)
	}

	if creds.PrivateKey != "" {
		var signer ssh.Signer
		var err error
		if creds.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(creds.PrivateKey), []byte(creds.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey([]byte(creds.PrivateKey))
		}
		if err != nil {
			return nil, fmt.Errorf("parsing private key: %w", err)
		}
		cfg.Auth = append(cfg.Auth, ssh.PublicKeys(signer))
	}
	if creds.Password != "" {
		cfg.Auth = append(cfg.Auth, ssh.Password(creds.Password))
	}

	d := net.Dialer{Timeout: l.cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", l.cfg.Addr)
	if err != nil {
		return nil, err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, l.cfg.Addr, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("opening sftp subsystem: %w", err)
	}
	return &clientSession{Client: client, conn: sshClient}, nil
}

// clientSession ties the SFTP client and its SSH connection together so both
// are torn down on Close.
type clientSession struct {
	*sftp.Client
	conn *ssh.Client
}

func (s *clientSession) Close() error {
	err := s.Client.Close()
	if cerr := s.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func withDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return net.JoinHostPort(addr, "22")
	}
	return addr
}
