package peer

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/davidroman0O/swactd/errors"
	"github.com/davidroman0O/swactd/platform"
)

// SFTPVersionReader reads the peer's build-info file over SFTP. Used when
// the platform export is not mounted between controllers.
type SFTPVersionReader struct {
	Host     string
	Port     int
	User     string
	Password string

	// BuildInfo is the peer-side path of the build-info file
	BuildInfo string

	// DialTimeout bounds the SSH connection attempt
	DialTimeout time.Duration
}

// NewSFTPVersionReader creates an SFTP-backed version reader
func NewSFTPVersionReader(host string, port int, user, password, buildInfo string) *SFTPVersionReader {
	return &SFTPVersionReader{
		Host:        host,
		Port:        port,
		User:        user,
		Password:    password,
		BuildInfo:   buildInfo,
		DialTimeout: 10 * time.Second,
	}
}

// Version implements VersionReader
func (r *SFTPVersionReader) Version(ctx context.Context) (string, error) {
	sshClient, err := r.dial()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrMountFailure, "peer unreachable over SSH")
	}
	defer sshClient.Close()

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrMountFailure, "sftp client creation failed")
	}
	defer sftpClient.Close()

	file, err := sftpClient.Open(r.BuildInfo)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrMountFailure,
			fmt.Sprintf("failed to open peer build-info %s", r.BuildInfo))
	}
	defer file.Close()

	conf, err := platform.ParseConfReader(file)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrMountFailure, "failed to read peer build-info")
	}

	version, err := platform.VersionFromConf(conf)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrMountFailure, "peer build-info carries no version")
	}

	return version, nil
}

func (r *SFTPVersionReader) dial() (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: r.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(r.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         r.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", r.Host, r.Port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return client, nil
}
