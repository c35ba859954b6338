package web

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/rs/zerolog"

	"github.com/valdor-terrains/internal/ledger"
	"github.com/valdor-terrains/internal/load"
	"github.com/valdor-terrains/internal/pipeline"
	"github.com/valdor-terrains/internal/record"
	"github.com/valdor-terrains/internal/store"
)

// Persister is the subset of the validation store the service needs;
// satisfied by *store.Store.
type Persister interface {
	Load(ctx context.Context) (ledger.Snapshot, error)
	Save(ctx context.Context, snap ledger.Snapshot) error
	Ping(ctx context.Context) error
}

// Service owns the in-memory datasets and the current reconciliation
// outcome. The pipeline itself is single-threaded; the service serializes
// access around it so concurrent HTTP requests see one consistent pass.
type Service struct {
	mu         sync.RWMutex
	municipal  []record.Record
	government []record.Record
	govMeta    load.Metadata
	led        *ledger.Ledger
	out        *pipeline.Outcome

	reconciler *pipeline.Reconciler
	persister  Persister
	cache      *store.Cache
	cfg        Config
	log        zerolog.Logger
}

// NewService wires a service. persister and cache may each be nil (no
// database, no local cache); the service then keeps decisions in memory
// only.
func NewService(cfg Config, persister Persister, cache *store.Cache, log zerolog.Logger) *Service {
	return &Service{
		reconciler: pipeline.New(log.With().Str("component", "pipeline").Logger()),
		persister:  persister,
		cache:      cache,
		cfg:        cfg,
		led:        ledger.New(),
		log:        log,
	}
}

// Bootstrap loads both datasets and the validation ledger, merging the
// database copy with the local cache by set union, then runs the first
// reconciliation pass.
func (s *Service) Bootstrap(ctx context.Context) error {
	municipal, _, err := load.ReadJSONFile(s.cfg.MunicipalDataPath)
	if err != nil {
		return fmt.Errorf("loading municipal dataset: %w", err)
	}
	government, govMeta, err := load.ReadJSONFile(s.cfg.GovernmentDataPath)
	if err != nil {
		return fmt.Errorf("loading government dataset: %w", err)
	}

	led := ledger.New()
	if s.persister != nil {
		snap, err := s.persister.Load(ctx)
		if err != nil {
			// Database outages must not keep the dashboard down; the
			// cache still holds the last known decisions.
			s.log.Warn().Err(err).Msg("validation store unavailable, falling back to cache")
		} else {
			led.Merge(snap)
		}
	}
	if s.cache != nil {
		snap, err := s.cache.Load()
		if err != nil {
			s.log.Warn().Err(err).Msg("validation cache unreadable, skipping")
		} else {
			led.Merge(snap)
		}
	}

	s.mu.Lock()
	s.municipal = municipal
	s.government = government
	s.govMeta = govMeta
	s.led = led
	s.out = s.reconciler.Run(municipal, government, led)
	s.mu.Unlock()

	s.log.Info().
		Int("municipal", len(municipal)).
		Int("government", len(government)).
		Msg("datasets loaded")
	return nil
}

// Outcome returns the current reconciliation outcome.
func (s *Service) Outcome() *pipeline.Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.out
}

// GovernmentLastUpdate returns the provincial dataset's last-update stamp.
func (s *Service) GovernmentLastUpdate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.govMeta.LastUpdate
}

// Validate marks a land id as operator-confirmed, persists the ledger and
// reruns the pipeline.
func (s *Service) Validate(ctx context.Context, id string) error {
	return s.decide(ctx, id, (*ledger.Ledger).MarkValidated)
}

// Reject marks a land id as operator-rejected, persists the ledger and
// reruns the pipeline.
func (s *Service) Reject(ctx context.Context, id string) error {
	return s.decide(ctx, id, (*ledger.Ledger).MarkRejected)
}

func (s *Service) decide(ctx context.Context, id string, mark func(*ledger.Ledger, string)) error {
	if id == "" {
		return fmt.Errorf("empty land id")
	}

	s.mu.Lock()
	mark(s.led, id)
	snap := s.led.Snapshot()
	s.out = s.reconciler.Run(s.municipal, s.government, s.led)
	s.mu.Unlock()

	return s.persist(ctx, snap)
}

// persist writes the snapshot to the database and the cache. A failing
// database is logged and tolerated as long as the cache succeeds.
func (s *Service) persist(ctx context.Context, snap ledger.Snapshot) error {
	var cacheErr error
	if s.cache != nil {
		cacheErr = s.cache.Save(snap)
	}
	if s.persister != nil {
		if err := s.persister.Save(ctx, snap); err != nil {
			s.log.Warn().Err(err).Msg("validation store save failed")
			if cacheErr != nil {
				return fmt.Errorf("persisting validations: %w", err)
			}
		}
	}
	return cacheErr
}

// SyncGovernment reloads the provincial dataset from disk and reruns the
// pipeline against it.
func (s *Service) SyncGovernment(ctx context.Context) error {
	government, govMeta, err := load.ReadJSONFile(s.cfg.GovernmentDataPath)
	if err != nil {
		return fmt.Errorf("reloading government dataset: %w", err)
	}

	s.mu.Lock()
	s.government = government
	s.govMeta = govMeta
	s.out = s.reconciler.Run(s.municipal, government, s.led)
	s.mu.Unlock()

	s.log.Info().Int("government", len(government)).Msg("government dataset synchronized")
	return nil
}

// Stats summarizes the current pass for the dashboard header.
type Stats struct {
	Counts       pipeline.Counts `json:"counts"`
	ByConfidence map[string]int  `json:"by_confidence"`
	ByNoticeYear map[string]int  `json:"by_notice_year"`
	GovLastSync  string          `json:"gov_last_sync,omitempty"`
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Stats computes dashboard statistics from the current outcome. Notice
// dates that carry no recognizable year are counted under no bucket;
// unparseable dates never fail the call.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Counts:       s.out.Counts,
		ByConfidence: map[string]int{},
		ByNoticeYear: map[string]int{},
		GovLastSync:  s.govMeta.LastUpdate,
	}
	tally := func(items []pipeline.Classified) {
		for _, item := range items {
			stats.ByConfidence[string(item.Confidence)]++
			if notice, ok := record.Resolve(item.Record, record.NoticeDate...); ok {
				if year := yearPattern.FindString(notice); year != "" {
					stats.ByNoticeYear[year]++
				}
			}
		}
	}
	tally(s.out.Confirmed)
	tally(s.out.Pending)
	return stats
}
