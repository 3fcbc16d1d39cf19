// Package app assembles the service from configuration: it loads the dataset,
// trains the classifier and wires the HTTP router.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "wildlife-threat-api/configs"
	"wildlife-threat-api/pkg/classifier"
	"wildlife-threat-api/pkg/dataset"
	"wildlife-threat-api/pkg/explain"
	"wildlife-threat-api/pkg/handlers"
	"wildlife-threat-api/pkg/llm"
	"wildlife-threat-api/pkg/logger"
	"wildlife-threat-api/pkg/metrics"
	"wildlife-threat-api/pkg/retrieval"
	"wildlife-threat-api/pkg/services"
	"wildlife-threat-api/pkg/wiki"
)

// App is the fully built, read-only service.
type App struct {
	Config     *config.Config
	Prediction *services.PredictionService
	Monitoring *services.MonitoringService
	Metrics    *metrics.Metrics
}

// Build loads and trains everything. A dataset error is returned wrapped with
// dataset.ErrData and is fatal for the caller.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", cfg.DataPath, err)
	}
	logger.Info("Dataset loaded",
		zap.String("path", cfg.DataPath),
		zap.Int("species", ds.Len()),
		zap.Int("habitats", len(ds.Habitats())))

	prompts, err := config.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	wikiClient := wiki.NewClient(wiki.Options{
		APIURL:     cfg.WikiAPIURL,
		RESTURL:    cfg.WikiRESTURL,
		AppVersion: cfg.AppVersion,
		Timeout:    cfg.HTTPTimeout,
		RateLimit:  cfg.WikiRateLimit,
		CacheTTL:   cfg.WikiCacheTTL,
	})

	llmClient, err := llm.NewClient(llmConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	explainer, err := explain.NewExplainer(llmClient, prompts, m)
	if err != nil {
		return nil, err
	}

	opts := classifier.DefaultOptions()
	if cfg.ForestTrees > 0 {
		opts.Trees = cfg.ForestTrees
	}
	if cfg.ForestMaxDepth > 0 {
		opts.MaxDepth = cfg.ForestMaxDepth
	}
	opts.Seed = cfg.RandomSeed

	svc, err := services.NewPredictionService(ctx, ds,
		retrieval.NewRetriever(wikiClient, m, cfg.EvidenceTopK),
		explainer, wikiClient, m, opts)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:     cfg,
		Prediction: svc,
		Monitoring: services.NewMonitoringService(),
		Metrics:    m,
	}, nil
}

// Router builds the gin engine serving the app.
func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return handlers.NewRouter(handlers.RouterDeps{
		Config:     a.Config,
		Predictor:  a.Prediction,
		Monitoring: a.Monitoring,
		Metrics:    a.Metrics.Handler(),
	})
}

func llmConfig(cfg *config.Config) llm.Config {
	apiKey := cfg.LLMAPIKey
	if cfg.LLMProvider == llm.ProviderAzure && apiKey == "" {
		apiKey = cfg.AzureOpenAIAPIKey
	}
	return llm.Config{
		Provider:        cfg.LLMProvider,
		APIKey:          apiKey,
		BaseURL:         cfg.LLMBaseURL,
		Model:           cfg.LLMModel,
		MaxTokens:       cfg.LLMMaxTokens,
		Temperature:     cfg.LLMTemperature,
		Timeout:         cfg.HTTPTimeout,
		AzureEndpoint:   cfg.AzureOpenAIEndpoint,
		AzureAPIVersion: cfg.AzureOpenAIAPIVersion,
	}
}
