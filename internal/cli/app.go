package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/savoir/internal/biblio"
	"github.com/ppiankov/savoir/internal/cache"
	"github.com/ppiankov/savoir/internal/ingest"
	"github.com/ppiankov/savoir/internal/llm"
	"github.com/ppiankov/savoir/internal/logger"
	"github.com/ppiankov/savoir/internal/model"
	"github.com/ppiankov/savoir/internal/rank"
	"github.com/ppiankov/savoir/internal/revision"
	"github.com/ppiankov/savoir/internal/service"
	"github.com/ppiankov/savoir/internal/store"
	"github.com/ppiankov/savoir/internal/summarize"
	"github.com/ppiankov/savoir/internal/synthesis"
	"github.com/ppiankov/savoir/internal/util"
	"github.com/ppiankov/savoir/internal/worker"
)

// app holds the wired components for one command invocation
type app struct {
	cfg     *model.Config
	log     *logger.Logger
	store   *store.Store
	service *service.KnowledgeService
	web     *ingest.WebFetcher
	bullets *llm.BulletWriter
}

// openApp loads the configuration and wires every component
func openApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg *model.Config) (*app, error) {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	httpClient := util.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	llmCfg := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	bullets := llm.NewBulletWriter(provider, llmCfg)

	summarizer := summarize.New(nil)
	composerOpts := []synthesis.Option{synthesis.WithLogger(log)}
	if bullets.IsEnabled() {
		composerOpts = append(composerOpts,
			synthesis.WithProducer(bullets),
			synthesis.WithTimeout(time.Duration(cfg.LLM.Timeout)*time.Second))
	}

	lookup := biblio.NewWikipediaLookup(cfg.Revision.WikipediaLang, cfg.HTTP.UserAgent,
		biblio.WithHTTPClient(httpClient),
		biblio.WithLimiter(limiter),
		biblio.WithCache(cache.New(cfg.Cache, cfg.Data.Dir), cfg.Cache.DiskTTL),
	)

	generator := revision.NewGenerator(
		rank.New(),
		synthesis.NewComposer(summarizer, composerOpts...),
		biblio.NewExternalFetcher(lookup, cfg.Revision.LookupTimeout, log),
		revision.Config{MaxDocs: cfg.Revision.MaxDocs, ExternalLimit: cfg.Revision.ExternalRefs},
		log,
	)

	webOpts := []ingest.WebOption{ingest.WithRateLimiter(limiter), ingest.WithWebLogger(log)}
	if cfg.HTTP.RespectRobots {
		webOpts = append(webOpts, ingest.WithRobots(util.NewRobotsChecker(httpClient, cfg.HTTP.UserAgent)))
	}

	return &app{
		cfg:     cfg,
		log:     log,
		store:   st,
		service: service.New(cfg.Data.Dir, st, summarizer, generator, log),
		web:     ingest.NewWebFetcher(httpClient, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, webOpts...),
		bullets: bullets,
	}, nil
}

// Close releases the store and flushes the logger
func (a *app) Close() error {
	a.log.Sync()
	return a.store.Close()
}

// addDocument stores doc. A failed regeneration of saved sheets is only a
// warning since the document itself was stored.
func (a *app) addDocument(ctx context.Context, doc *model.NewDocument) (int64, error) {
	id, err := a.service.AddDocument(ctx, *doc)
	if err != nil && id == 0 {
		return 0, err
	}
	if err != nil {
		a.log.Warn("document stored but saved sheets were not regenerated", "id", id, "error", err)
	}
	return id, nil
}
