package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/bridge/pkg/config"
)

// CertificateReloader serves a certificate pair from disk and reloads it
// when either file changes.
type CertificateReloader struct {
	certFile string
	keyFile  string
	schedule cron.Schedule
	logger   *slog.Logger

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

// NewCertificateReloader creates a reloader for the pair and loads it. Once
// Run is called the files are checked for changes on schedule, a standard
// cron expression. An empty schedule or config.TLSReloadDisabled never
// reloads.
func NewCertificateReloader(certFile, keyFile, schedule string, logger *slog.Logger) (*CertificateReloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &CertificateReloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger,
	}
	if schedule != "" && schedule != config.TLSReloadDisabled {
		parsed, err := cron.ParseStandard(schedule)
		if err != nil {
			return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
		}
		r.schedule = parsed
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	r.logCertificate("certificate loaded")
	return r, nil
}

// Run checks the files on the reload schedule until ctx is cancelled, then
// waits for a running check to finish. Without a schedule it returns at
// once.
func (r *CertificateReloader) Run(ctx context.Context) {
	if r.schedule == nil {
		return
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(r.schedule, cron.FuncJob(func() { r.Check() }))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
}

// Check reloads the pair if either file changed since the last load. It
// reports whether a new certificate is now served; a failed reload keeps
// the previous one.
func (r *CertificateReloader) Check() bool {
	if !r.needsReload() {
		return false
	}
	if err := r.reload(); err != nil {
		r.logger.Error("failed to reload certificate",
			"error", err,
			"cert_file", r.certFile,
			"key_file", r.keyFile,
		)
		return false
	}
	r.logCertificate("certificate reloaded")
	return true
}

func (r *CertificateReloader) needsReload() bool {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return !certInfo.ModTime().Equal(r.certTime) || !keyInfo.ModTime().Equal(r.keyTime)
}

func (r *CertificateReloader) reload() error {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return fmt.Errorf("certificate file: %w", err)
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return fmt.Errorf("key file: %w", err)
	}

	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}
	if err := ValidateCertificate(&cert); err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.certTime = certInfo.ModTime()
	r.keyTime = keyInfo.ModTime()
	r.mu.Unlock()
	return nil
}

// Certificate returns the certificate currently served.
func (r *CertificateReloader) Certificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertificateReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.Certificate(), nil
}

func (r *CertificateReloader) logCertificate(msg string) {
	x509Cert, err := leaf(r.Certificate())
	if err != nil {
		return
	}

	days := DaysUntilExpiry(x509Cert)
	attrs := []any{
		"subject", x509Cert.Subject.CommonName,
		"issuer", x509Cert.Issuer.CommonName,
		"expires_in_days", days,
		"expires_at", x509Cert.NotAfter.Format(time.RFC3339),
	}
	if days < expiryWarningDays {
		r.logger.Warn("certificate expiring soon", attrs...)
		return
	}
	r.logger.Info(msg, attrs...)
}
