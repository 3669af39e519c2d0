package preferences

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/sportsbook-boot/pkg/cache"
	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"go.uber.org/zap"
)

// DocumentConfig holds configuration for a localized JSON document service.
type DocumentConfig struct {
	Name       string // "configuration" or "theme"
	URL        string
	HTTPClient *http.Client
	Cache      cache.Cache
	CacheTTL   time.Duration
	Timeout    time.Duration
	Language   func() string
	Logger     *zap.Logger
}

// DocumentService fetches a JSON document per language in the background.
// The configuration and theme services are both DocumentServices.
type DocumentService struct {
	name     string
	url      string
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	timeout  time.Duration
	language func() string
	logger   *zap.Logger

	document *observable.Value[json.RawMessage]
}

// NewDocumentService creates a document service with an empty document.
func NewDocumentService(cfg DocumentConfig) (*DocumentService, error) {
	if cfg.Name == "" {
		return nil, errors.New("name cannot be empty")
	}
	if cfg.URL == "" {
		return nil, errors.New("url cannot be empty")
	}
	if cfg.Cache == nil {
		return nil, errors.New("cache cannot be nil")
	}
	if cfg.Language == nil {
		return nil, errors.New("language source cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &DocumentService{
		name:     cfg.Name,
		url:      cfg.URL,
		client:   client,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		timeout:  timeout,
		language: cfg.Language,
		logger:   cfg.Logger.With(zap.String("document", cfg.Name)),
		document: observable.NewValue[json.RawMessage](nil),
	}, nil
}

// Document returns the observable document; nil until the first load.
func (s *DocumentService) Document() *observable.Value[json.RawMessage] {
	return s.document
}

// Start loads the document in the background. Failures are logged and the
// previous document is kept.
func (s *DocumentService) Start() {
	language := s.language()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		err := s.Load(ctx, language)
		if err != nil {
			s.logger.Warn("document-load-failed", zap.String("language", language), zap.Error(err))
		}
	}()
}

// Load fetches the document for language, serving from cache when possible.
func (s *DocumentService) Load(ctx context.Context, language string) error {
	key := s.name + ":" + language

	cached, ok := s.cache.Get(key)
	if ok {
		if doc, isDoc := cached.(json.RawMessage); isDoc {
			s.document.Set(doc)
			return nil
		}
	}

	start := time.Now()
	params := url.Values{}
	params.Add("lang", language)

	var doc json.RawMessage
	err := getJSON(ctx, s.client, s.name, s.url+"?"+params.Encode(), &doc)
	FetchDurationSeconds.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	if err != nil {
		FetchErrorsTotal.WithLabelValues(s.name).Inc()
		return err
	}

	s.cache.Set(key, doc, s.cacheTTL)
	s.document.Set(doc)
	s.logger.Debug("document-loaded", zap.String("language", language), zap.Int("bytes", len(doc)))
	return nil
}
