package artifacts

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"
)

// FTPFetcher downloads artifacts from an FTP server. Credentials come from the
// URL template; without them the anonymous login is used.
type FTPFetcher struct {
	template string
	timeout  time.Duration
	retries  uint64
	logger   *zap.Logger
}

func NewFTPFetcher(template string, timeout time.Duration, retries uint64, logger *zap.Logger) *FTPFetcher {
	return &FTPFetcher{template: template, timeout: timeout, retries: retries, logger: logger}
}

type ftpTarget struct {
	addr     string
	user     string
	password string
	path     string
}

func parseFTPTarget(raw string) (ftpTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ftpTarget{}, fmt.Errorf("parse ftp url: %w", err)
	}
	if u.Scheme != "ftp" || u.Host == "" || u.Path == "" {
		return ftpTarget{}, fmt.Errorf("invalid ftp url %q", raw)
	}

	t := ftpTarget{addr: u.Host, user: "anonymous", password: "anonymous", path: u.Path}
	if u.Port() == "" {
		t.addr = net.JoinHostPort(u.Hostname(), "21")
	}
	if u.User != nil {
		t.user = u.User.Username()
		t.password, _ = u.User.Password()
	}
	return t, nil
}

func (f *FTPFetcher) Fetch(ctx context.Context, id string) ([]byte, error) {
	raw, err := resolve(f.template, id)
	if err != nil {
		return nil, err
	}
	target, err := parseFTPTarget(raw)
	if err != nil {
		return nil, err
	}

	var body []byte
	operation := func() error {
		conn, err := ftp.Dial(target.addr, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
		if err != nil {
			return fmt.Errorf("ftp dial: %w", err)
		}
		defer conn.Quit()

		if err := conn.Login(target.user, target.password); err != nil {
			return backoff.Permanent(fmt.Errorf("ftp login: %w", err))
		}

		resp, err := conn.Retr(target.path)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("ftp retr %s: %w", target.path, err))
		}
		defer resp.Close()

		body, err = io.ReadAll(io.LimitReader(resp, maxArtifactSize+1))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if len(body) > maxArtifactSize {
			return backoff.Permanent(fmt.Errorf("ftp retr %s: artifact larger than %d bytes", target.path, maxArtifactSize))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Warn("ftp fetch failed, retrying", zap.String("id", id), zap.Error(err), zap.Duration("wait", wait))
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.retries), ctx)
	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		return nil, err
	}
	return body, nil
}
