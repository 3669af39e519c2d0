package localization

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Config holds localizer configuration.
type Config struct {
	Supported []string // BCP 47 tags; the first is the fallback
	Initial   string
	Logger    *zap.Logger
}

// Localizer tracks the active UI language among a fixed set of supported ones.
type Localizer struct {
	logger    *zap.Logger
	supported []language.Tag
	matcher   language.Matcher

	mu      sync.RWMutex
	current language.Tag
}

// New creates a localizer. An empty Initial selects the first supported language.
func New(cfg Config) (*Localizer, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if len(cfg.Supported) == 0 {
		return nil, errors.New("at least one supported language is required")
	}

	tags := make([]language.Tag, 0, len(cfg.Supported))
	for _, code := range cfg.Supported {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("parse supported language %q: %w", code, err)
		}
		tags = append(tags, tag)
	}

	l := &Localizer{
		logger:    cfg.Logger,
		supported: tags,
		matcher:   language.NewMatcher(tags),
		current:   tags[0],
	}

	if cfg.Initial != "" {
		err := l.SetLanguage(cfg.Initial)
		if err != nil {
			return nil, err
		}
	}

	return l, nil
}

// SetLanguage switches the active language. Regional variants resolve to
// their supported base ("fr-CA" selects "fr"); anything else is rejected
// with ErrUnsupportedLanguage.
func (l *Localizer) SetLanguage(code string) error {
	tag, err := l.resolve(code)
	if err != nil {
		return err
	}

	l.mu.Lock()
	prev := l.current
	l.current = tag
	l.mu.Unlock()

	if prev != tag {
		l.logger.Info("language-changed",
			zap.String("from", prev.String()),
			zap.String("to", tag.String()))
	}
	return nil
}

// Language returns the active language code.
func (l *Localizer) Language() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current.String()
}

// Supported returns the supported language codes.
func (l *Localizer) Supported() []string {
	codes := make([]string, 0, len(l.supported))
	for _, tag := range l.supported {
		codes = append(codes, tag.String())
	}
	return codes
}

func (l *Localizer) resolve(code string) (language.Tag, error) {
	requested, err := language.Parse(code)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", types.ErrUnsupportedLanguage, code)
	}

	_, index, confidence := l.matcher.Match(requested)
	if confidence < language.High {
		return language.Und, fmt.Errorf("%w: %q", types.ErrUnsupportedLanguage, code)
	}
	return l.supported[index], nil
}
