package main

import (
	"github.com/rotisserie/eris"

	"github.com/bankfeeds/branchsync/internal/config"
	"github.com/bankfeeds/branchsync/internal/fetcher"
	"github.com/bankfeeds/branchsync/internal/notify"
	"github.com/bankfeeds/branchsync/internal/pipeline"
	"github.com/bankfeeds/branchsync/internal/source"
	"github.com/bankfeeds/branchsync/internal/store"
	"github.com/bankfeeds/branchsync/pkg/appwrite"
	"github.com/bankfeeds/branchsync/pkg/telegram"
)

// buildStore constructs the configured store backend.
func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "appwrite":
		client := appwrite.NewClient(cfg.Appwrite.Endpoint, cfg.Appwrite.ProjectID, cfg.Appwrite.APIKey)
		return store.NewAppwrite(client, cfg.Appwrite.DatabaseID, cfg.Appwrite.CollectionID, cfg.Appwrite.StatusDocID), nil
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver: %q (valid: appwrite, sqlite)", cfg.Store.Driver)
	}
}

// buildNotifier constructs the Telegram notifier, or the log fallback
// when no bot token is configured.
func buildNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Telegram.BotToken == "" {
		return notify.Log{}
	}
	return notify.NewTelegram(telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
}

// buildPipeline wires a full pipeline from config. The caller owns the
// returned store and must Close it.
func buildPipeline(cfg *config.Config, force bool) (*pipeline.Pipeline, store.Store, error) {
	st, err := buildStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:      cfg.Source.Timeout(),
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	sc := source.NewScanner(f, cfg.Source.DocsBaseURL)

	p := pipeline.New(st, f, sc, buildNotifier(cfg), pipeline.Options{
		PageURL:  cfg.Source.PageURL,
		FilePace: cfg.Source.FilePace(),
		Force:    force,
	})
	return p, st, nil
}
