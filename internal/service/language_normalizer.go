package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-judge-api/pkg/judge"
)

// LanguageLookup resolves judge language ids that are missing from the static table.
type LanguageLookup interface {
	Language(ctx context.Context, id int) (judge.Language, error)
}

// LanguageNormalizer maps editor language tokens onto canonical display names.
type LanguageNormalizer interface {
	// Normalize never fails; unknown tokens are returned verbatim.
	Normalize(ctx context.Context, token string) string
	// LanguageID resolves the judge language id for a token.
	LanguageID(ctx context.Context, token string) (int, bool)
}

var languagePlaceholder = regexp.MustCompile(`(?i)^language\s+(\d+)$`)

type languageNormalizer struct {
	table    *judge.LanguageTable
	lookup   LanguageLookup
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewLanguageNormalizer builds a normalizer over the given table. lookup and cache are optional.
func NewLanguageNormalizer(table *judge.LanguageTable, lookup LanguageLookup, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) LanguageNormalizer {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &languageNormalizer{
		table:    table,
		lookup:   lookup,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "language_normalizer").Logger(),
	}
}

func (n *languageNormalizer) Normalize(ctx context.Context, token string) string {
	id, ok := parseLanguageID(token)
	if !ok {
		return token
	}

	if name, ok := n.table.Name(id); ok {
		return name
	}
	if name, ok := n.cached(ctx, id); ok {
		return name
	}
	if n.lookup == nil {
		return token
	}

	language, err := n.lookup.Language(ctx, id)
	name := strings.TrimSpace(language.Name)
	if err != nil || name == "" {
		n.logger.Warn().Err(err).Int("language_id", id).Msg("language lookup failed, keeping raw token")
		return token
	}

	n.store(ctx, id, name)
	return name
}

func (n *languageNormalizer) LanguageID(ctx context.Context, token string) (int, bool) {
	if id, ok := parseLanguageID(token); ok {
		return id, true
	}
	return n.table.ID(token)
}

func (n *languageNormalizer) cached(ctx context.Context, id int) (string, bool) {
	if n.cache == nil {
		return "", false
	}
	name, err := n.cache.Get(ctx, languageCacheKey(id)).Result()
	if err != nil {
		if err != redis.Nil {
			n.logger.Warn().Err(err).Msg("failed to read language cache")
		}
		return "", false
	}
	return name, name != ""
}

func (n *languageNormalizer) store(ctx context.Context, id int, name string) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Set(ctx, languageCacheKey(id), name, n.cacheTTL).Err(); err != nil {
		n.logger.Warn().Err(err).Msg("failed to store language cache")
	}
}

func languageCacheKey(id int) string {
	return fmt.Sprintf("judge:language:%d", id)
}

// parseLanguageID accepts "71" and "Language 71".
func parseLanguageID(token string) (int, bool) {
	trimmed := strings.TrimSpace(token)
	if match := languagePlaceholder.FindStringSubmatch(trimmed); match != nil {
		trimmed = match[1]
	}
	id, err := strconv.Atoi(trimmed)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
