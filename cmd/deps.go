package main

import (
	"context"

	"domainwatch/internal/config"
	"domainwatch/internal/subscription"
	"domainwatch/pkg/logger"
	"domainwatch/pkg/metrics"
	"domainwatch/pkg/notifier"
	"domainwatch/pkg/storage/jsonfile"
	"domainwatch/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// getStores creates the pending and confirmed JSON document stores.
func getStores(ctx context.Context, cfg *config.Config) (*jsonfile.Store, *jsonfile.Store) {
	mode, err := cfg.StorageFileMode()
	if err != nil {
		logger.Fatal(ctx, "invalid storage options", zap.Error(err))
	}

	pending := jsonfile.New(jsonfile.Options{
		Path:        cfg.Storage.PendingPath,
		FileMode:    mode,
		LockTimeout: cfg.Storage.LockTimeout,
	})
	confirmed := jsonfile.New(jsonfile.Options{
		Path:        cfg.Storage.ConfirmedPath,
		FileMode:    mode,
		LockTimeout: cfg.Storage.LockTimeout,
	})

	return pending, confirmed
}

// getMailer creates the configured mail transport.
func getMailer(ctx context.Context, cfg *config.Config) notifier.Mailer {
	mailer, err := notifier.New(notifier.Options{
		Provider: cfg.Mailer.Provider,
		SMTP: notifier.SMTPOptions{
			Host:      cfg.Mailer.SMTP.Host,
			Port:      cfg.Mailer.SMTP.Port,
			Username:  cfg.Mailer.SMTP.Username,
			Password:  cfg.Mailer.SMTP.Password,
			AuthType:  cfg.Mailer.SMTP.AuthType,
			TLSPolicy: cfg.Mailer.SMTP.TLSPolicy,
			Timeout:   cfg.Mailer.SMTP.Timeout,
		},
		SES: notifier.SESOptions{
			Region:          cfg.Mailer.SES.Region,
			AccessKeyID:     cfg.Mailer.SES.AccessKeyID,
			SecretAccessKey: cfg.Mailer.SES.SecretAccessKey,
		},
	})
	if err != nil {
		logger.Fatal(ctx, "could not create mailer", zap.Error(err))
	}

	return mailer
}

// getSubscriptions builds the subscription service. reg receives its metrics
// and may be nil.
func getSubscriptions(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) subscription.Service {
	pending, confirmed := getStores(ctx, cfg)

	var m *metrics.Subscription
	if reg != nil {
		m = metrics.NewSubscription(reg)
	}

	return subscription.New(subscription.Deps{
		Pending:   pending,
		Confirmed: confirmed,
		Validator: validator.New(validator.Options{
			CheckDNS: !cfg.Validator.DisableDNS,
			CheckTLS: !cfg.Validator.DisableTLS,
			Timeout:  cfg.Validator.Timeout,
			TLSPort:  cfg.Validator.TLSPort,
		}),
		Mailer:  getMailer(ctx, cfg),
		Metrics: m,
	}, subscription.NewOptions(cfg))
}
