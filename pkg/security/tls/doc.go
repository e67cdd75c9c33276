// Package tls terminates HTTPS for the bridge server.
//
// The certificate pair is loaded once at startup and then checked for
// changes on a cron schedule, so renewed certificates are picked up without
// a restart:
//
//	reloader, err := tls.NewCertificateReloader(cfg.CertFile, cfg.KeyFile, "@every 5m", logger)
//	if err != nil {
//	    return err
//	}
//	go reloader.Run(ctx)
//
//	tlsConfig, err := tls.NewConfig(cfg, reloader)
//	ln = cryptotls.NewListener(ln, tlsConfig)
//
// Setting client_ca_file enables client certificate verification.
package tls
