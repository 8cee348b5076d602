package httptransport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gitlab.com/gitlab-org/labkit/log"
)

const (
	// DefaultTTFBTimeout is the time allowed between sending a request and
	// receiving the first response byte from an upstream service
	DefaultTTFBTimeout = 15 * time.Second

	certFileEnv = "SSL_CERT_FILE"
	certDirEnv  = "SSL_CERT_DIR"
)

var (
	sysPoolOnce = &sync.Once{}
	sysPool     *x509.CertPool

	// DefaultTransport is the transport shared by all upstream collections
	DefaultTransport = NewTransport()
)

// NewTransport returns a http.Transport with connection pool settings suited
// for a small number of busy upstream hosts
func NewTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{RootCAs: pool()},
		Proxy:           http.ProxyFromEnvironment,
		// overrides the DefaultMaxIdleConnsPerHost = 2
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 15 * time.Second,
		// waiting for response headers is bounded per collection by the
		// metered round tripper's TTFB timeout
	}
}

// pool returns the system certificates extended with SSL_CERT_FILE and
// SSL_CERT_DIR
func pool() *x509.CertPool {
	sysPoolOnce.Do(loadPool)
	return sysPool
}

func loadPool() {
	var err error

	sysPool, err = x509.SystemCertPool()
	if err != nil {
		log.WithError(err).Error("failed to load system cert pool for http client")
		sysPool = x509.NewCertPool()
	}

	if certFile := os.Getenv(certFileEnv); certFile != "" {
		if err := appendCertFile(certFile); err != nil {
			log.WithError(err).Error("failed to read " + certFileEnv)
		}
	}

	if err := loadCertDir(os.Getenv(certDirEnv)); err != nil {
		log.WithError(err).Warn("failed to load " + certDirEnv)
	}
}

func loadCertDir(dir string) error {
	if dir == "" {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", certDirEnv, err)
	}

	for _, entry := range entries {
		// Copy only regular files and symlinks
		mode := entry.Type()
		if !(mode.IsRegular() || mode&os.ModeSymlink != 0) {
			continue
		}

		if err := appendCertFile(filepath.Join(dir, entry.Name())); err != nil {
			log.WithError(err).Warnf("skipping certificate %q", entry.Name())
		}
	}

	return nil
}

func appendCertFile(path string) error {
	certPem, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if !sysPool.AppendCertsFromPEM(certPem) {
		return fmt.Errorf("no certificates found in %q", path)
	}

	return nil
}
