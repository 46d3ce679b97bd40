package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"amzhub/internal/expander"
)

const expandKeyPrefix = "amzhub:expand:"

// ExpandService runs batch expansions with an optional Redis memo of
// previously resolved URLs. A nil redis client disables caching; cache
// errors degrade to a live expansion, never to a failed outcome.
type ExpandService struct {
	exp   *expander.Expander
	cache *redis.Client
	ttl   time.Duration
}

func NewExpandService(exp *expander.Expander, cache *redis.Client, ttl time.Duration) *ExpandService {
	return &ExpandService{exp: exp, cache: cache, ttl: ttl}
}

// ExpandBatch returns one outcome per input URL, in input order. Only
// successful extractions are cached; failures are retried on the next
// request.
func (s *ExpandService) ExpandBatch(ctx context.Context, urls []string) []expander.Outcome {
	outcomes := make([]expander.Outcome, 0, len(urls))
	for _, u := range urls {
		if cached, ok := s.lookup(ctx, u); ok {
			outcomes = append(outcomes, *cached)
			continue
		}
		out := s.exp.Expand(ctx, u)
		if out.Error == "" {
			s.store(ctx, u, out)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (s *ExpandService) lookup(ctx context.Context, u string) (*expander.Outcome, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, expandKeyPrefix+u).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("expand cache get: %v", err)
		}
		return nil, false
	}
	var out expander.Outcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return &out, true
}

func (s *ExpandService) store(ctx context.Context, u string, out expander.Outcome) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, expandKeyPrefix+u, raw, s.ttl).Err(); err != nil {
		log.Printf("expand cache set: %v", err)
	}
}
