package services

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/docfmt"
	"github.com/tsawler/docfmt/config"
	"github.com/tsawler/docfmt/internal/cache"
	"github.com/tsawler/docfmt/internal/rulestore"
	"github.com/tsawler/docfmt/rules"
)

// FromConfig builds the service the server binaries share. The returned
// func releases the cache connection.
func FromConfig(cfg *config.Config, logger *logrus.Logger) (*FormattingService, func(), error) {
	store, err := rulestore.NewFileStore(cfg.Rules.Dir)
	if err != nil {
		return nil, nil, err
	}

	preset, ok := rules.Preset(cfg.Rules.Preset)
	if !ok {
		return nil, nil, fmt.Errorf("unknown rules preset %q", cfg.Rules.Preset)
	}

	checkerOpts := []docfmt.Option{
		docfmt.WithAuthor(cfg.Annotation.Author, cfg.Annotation.Initials),
	}
	if cfg.Annotation.Language != "" {
		checkerOpts = append(checkerOpts, docfmt.WithLanguage(cfg.Annotation.Language))
	}

	opts := []FormattingOption{
		WithLogger(logger),
		WithChecker(docfmt.New(checkerOpts...)),
		WithDefaultSchema(preset),
		WithConcurrency(cfg.Workers.Concurrency),
	}

	cleanup := func() {}
	if cfg.Cache.Enable {
		ttl := time.Duration(cfg.Cache.TTL) * time.Second
		c, err := cache.New(cache.Config{
			Type:            cfg.Cache.Type,
			RedisAddr:       cfg.Cache.Address,
			RedisPassword:   cfg.Cache.Password,
			RedisDB:         cfg.Cache.DB,
			DefaultTTL:      ttl,
			CleanupInterval: 10 * time.Minute,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		if closer, ok := c.(io.Closer); ok {
			cleanup = func() {
				if err := closer.Close(); err != nil {
					logger.WithError(err).Warn("Failed to close cache")
				}
			}
		}
		opts = append(opts, WithCache(c, ttl))
	}

	logger.WithFields(logrus.Fields{
		"rules_dir": store.Dir(),
		"preset":    cfg.Rules.Preset,
		"workers":   cfg.Workers.Concurrency,
		"cache":     cfg.Cache.Enable,
	}).Info("Formatting service configured")

	return NewFormattingService(store, opts...), cleanup, nil
}
