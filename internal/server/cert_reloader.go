package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"tailorpipe/internal/config"
	tperrors "tailorpipe/internal/errors"
	"tailorpipe/internal/observability"
)

// CertReloader serves the TLS certificate and hot-reloads it when the
// certificate or key file changes on disk. File events are debounced because
// certificate rotation typically rewrites both files in quick succession.
type CertReloader struct {
	tlsConfig *config.TLSConfig
	om        *observability.ObservabilityManager
	logger    *tperrors.Logger

	mu   sync.RWMutex
	cert *tls.Certificate
	leaf *x509.Certificate

	watcher  *fsnotify.Watcher
	watched  map[string]bool
	debounce time.Duration

	timerMu sync.Mutex
	timer   *time.Timer

	done chan struct{}

	reloads  atomic.Int64
	failures atomic.Int64
}

// NewCertReloader creates a reloader and loads the initial certificate
func NewCertReloader(tlsConfig *config.TLSConfig, om *observability.ObservabilityManager, logger *tperrors.Logger) (*CertReloader, error) {
	debounce := tlsConfig.AutoReload.DebounceDelay
	if debounce <= 0 {
		debounce = time.Second
	}

	watched := map[string]bool{
		filepath.Clean(tlsConfig.CertFile): true,
		filepath.Clean(tlsConfig.KeyFile):  true,
	}
	if tlsConfig.CAFile != "" {
		watched[filepath.Clean(tlsConfig.CAFile)] = true
	}

	r := &CertReloader{
		tlsConfig: tlsConfig,
		om:        om,
		logger:    logger,
		watched:   watched,
		debounce:  debounce,
		done:      make(chan struct{}),
	}

	if err := r.load(); err != nil {
		return nil, err
	}

	return r, nil
}

// Start begins watching the certificate files for changes
func (r *CertReloader) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	r.watcher = watcher

	// Watch the parent directories so atomic replace (write to temp file,
	// rename over the original) is still observed.
	dirs := make(map[string]bool)
	for file := range r.watched {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeErr := watcher.Close()
			if closeErr != nil {
				r.logger.LogError(closeErr, "Failed to close file watcher")
			}
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	go r.watchLoop()

	r.logger.Info("Certificate reloader started",
		"watched_files", len(r.watched),
		"debounce", r.debounce.String())

	return nil
}

// watchLoop processes file system events until Stop is called
func (r *CertReloader) watchLoop() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !r.watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			r.logger.Debug("Certificate file event",
				"file", event.Name,
				"op", event.Op.String())
			r.scheduleReload()
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.LogError(err, "Certificate file watcher error")
		case <-r.done:
			return
		}
	}
}

// scheduleReload resets the debounce timer; the reload fires once the events
// settle
func (r *CertReloader) scheduleReload() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.reload)
}

// reload loads the certificate pair from disk and swaps it in. A failed load
// keeps serving the previous certificate.
func (r *CertReloader) reload() {
	r.reloads.Add(1)

	err := r.load()
	success := err == nil

	if r.om != nil {
		r.om.GetMetrics().RecordCertReload(context.Background(), success)
	}

	if err != nil {
		r.failures.Add(1)
		r.logger.LogError(err, "Failed to reload TLS certificates; keeping previous certificate")
		return
	}

	r.logger.Info("TLS certificates reloaded successfully")
}

// load reads and parses the certificate pair, updating the served certificate
func (r *CertReloader) load() error {
	cert, err := tls.LoadX509KeyPair(r.tlsConfig.CertFile, r.tlsConfig.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load key pair: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	r.mu.Lock()
	r.cert = &cert
	r.leaf = leaf
	r.mu.Unlock()

	if r.om != nil {
		r.om.GetMetrics().RecordCertExpiry(context.Background(), time.Until(leaf.NotAfter).Seconds())
	}

	return nil
}

// GetCertificate returns the current certificate for a TLS handshake
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.cert == nil {
		return nil, fmt.Errorf("no certificate loaded")
	}
	return r.cert, nil
}

// CheckExpiry returns the time until the current certificate expires
func (r *CertReloader) CheckExpiry() (time.Duration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.leaf == nil {
		return 0, fmt.Errorf("no certificate loaded")
	}
	return time.Until(r.leaf.NotAfter), nil
}

// WatchedFiles returns the list of files being watched
func (r *CertReloader) WatchedFiles() []string {
	files := make([]string, 0, len(r.watched))
	for file := range r.watched {
		files = append(files, file)
	}
	return files
}

// ReloadCounts returns the total and failed reload attempts
func (r *CertReloader) ReloadCounts() (reloads, failures int64) {
	return r.reloads.Load(), r.failures.Load()
}

// Stop stops watching and releases the watcher
func (r *CertReloader) Stop() error {
	close(r.done)

	r.timerMu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timerMu.Unlock()

	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}
