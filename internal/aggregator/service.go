// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

// Package aggregator computes time-windowed activity reports for the
// dashboard. Reads degrade to zero-value reports when the store is
// unavailable, so a database incident dims the dashboard instead of breaking
// it; writes never degrade and stay in the intake path.
package aggregator

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/airlog/internal/cache"
	"github.com/tomtom215/airlog/internal/config"
	"github.com/tomtom215/airlog/internal/database"
	"github.com/tomtom215/airlog/internal/logging"
	"github.com/tomtom215/airlog/internal/metrics"
	"github.com/tomtom215/airlog/internal/models"
)

// Store is the analytics read surface the aggregator needs.
type Store interface {
	GetOverviewScalars(ctx context.Context, filter database.EventFilter) (totalEvents, uniqueActors int, totalBytes int64, err error)
	GetTopFiles(ctx context.Context, filter database.EventFilter, n int) ([]models.TopFile, error)
	GetTypeBreakdown(ctx context.Context, filter database.EventFilter) ([]models.TypeBreakdown, error)
	GetDailyHistogram(ctx context.Context, filter database.EventFilter) ([]models.DailyBucket, error)
	GetHourlyHistogram(ctx context.Context, filter database.EventFilter) ([]models.HourlyBucket, error)
	GetUserRollup(ctx context.Context, filter database.EventFilter) ([]models.UserRollupRow, int, error)
	GetEventLog(ctx context.Context, filter database.EventFilter) ([]models.ActivityEvent, int, error)
}

// Service computes dashboard reports with caching and a circuit breaker in
// front of the store.
type Service struct {
	store   Store
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker[interface{}]
	cfg     config.AnalyticsConfig

	// now is injectable for deterministic window bounds in tests.
	now func() time.Time
}

// TopFileLimit is the fixed N for the top-files ranking.
const TopFileLimit = 10

// New creates an aggregation service over the given store.
func New(store Store, cfg config.AnalyticsConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "analytics-store",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Service{
		store:   store,
		cache:   cache.New(ttl),
		breaker: breaker,
		cfg:     cfg,
		now:     time.Now,
	}
}

// GetOverview assembles the headline report for one timeframe. Any store
// failure yields a fully zero-valued report for that timeframe rather than
// an error.
func (s *Service) GetOverview(ctx context.Context, timeframe Timeframe) *models.Overview {
	cacheKey := cache.GenerateKey("overview", string(timeframe))
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.Overview)
	}

	start, end := timeframe.Window(s.now().UTC())
	filter := database.EventFilter{Start: start, End: end}

	started := time.Now()
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.buildOverview(ctx, timeframe, filter)
	})
	metrics.RecordAnalyticsQuery("overview", time.Since(started))
	if err != nil {
		metrics.AnalyticsDegradedReads.Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("timeframe", string(timeframe)).
			Msg("Overview query degraded to zero values")
		return emptyOverview(timeframe)
	}

	overview := result.(*models.Overview)
	s.cache.Set(cacheKey, overview)
	return overview
}

func (s *Service) buildOverview(ctx context.Context, timeframe Timeframe, filter database.EventFilter) (*models.Overview, error) {
	totalEvents, uniqueActors, totalBytes, err := s.store.GetOverviewScalars(ctx, filter)
	if err != nil {
		return nil, err
	}

	topFiles, err := s.store.GetTopFiles(ctx, filter, TopFileLimit)
	if err != nil {
		return nil, err
	}

	daily, err := s.store.GetDailyHistogram(ctx, filter)
	if err != nil {
		return nil, err
	}

	hourly, err := s.store.GetHourlyHistogram(ctx, filter)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.store.GetTypeBreakdown(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.Overview{
		Timeframe:       string(timeframe),
		TotalEvents:     totalEvents,
		UniqueActors:    uniqueActors,
		TotalBytes:      totalBytes,
		TopFiles:        topFiles,
		DailyHistogram:  fillDailyGaps(daily, filter.Start, filter.End),
		HourlyHistogram: fillHourlyGaps(hourly),
		TypeBreakdown:   breakdown,
	}, nil
}

// GetUserRollup returns one page of the per-user report. Store failures
// degrade to an empty page.
func (s *Service) GetUserRollup(ctx context.Context, timeframe Timeframe, search string, page, pageSize int) *models.UserRollup {
	page, pageSize = s.clampPage(page, pageSize)

	cacheKey := cache.GenerateKey("user-rollup", struct {
		Timeframe string
		Search    string
		Page      int
		PageSize  int
	}{string(timeframe), search, page, pageSize})
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.UserRollup)
	}

	start, end := timeframe.Window(s.now().UTC())
	filter := database.EventFilter{
		Start:       start,
		End:         end,
		ActorSearch: search,
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		rows, total, err := s.store.GetUserRollup(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &models.UserRollup{
			Timeframe:  string(timeframe),
			Rows:       rows,
			TotalCount: total,
			Page:       page,
			PageSize:   pageSize,
		}, nil
	})
	if err != nil {
		metrics.AnalyticsDegradedReads.Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("timeframe", string(timeframe)).
			Msg("User rollup query degraded to empty page")
		return &models.UserRollup{
			Timeframe: string(timeframe),
			Rows:      []models.UserRollupRow{},
			Page:      page,
			PageSize:  pageSize,
		}
	}

	rollup := result.(*models.UserRollup)
	if rollup.Rows == nil {
		rollup.Rows = []models.UserRollupRow{}
	}
	s.cache.Set(cacheKey, rollup)
	return rollup
}

// GetEventLog returns one page of raw events, newest first. Store failures
// degrade to an empty page.
func (s *Service) GetEventLog(ctx context.Context, timeframe Timeframe, filter database.EventFilter, page, pageSize int) *models.EventLog {
	page, pageSize = s.clampPage(page, pageSize)

	start, end := timeframe.Window(s.now().UTC())
	filter.Start = start
	filter.End = end
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	result, err := s.breaker.Execute(func() (interface{}, error) {
		rows, total, err := s.store.GetEventLog(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &models.EventLog{
			Timeframe:  string(timeframe),
			Rows:       rows,
			TotalCount: total,
			Page:       page,
			PageSize:   pageSize,
		}, nil
	})
	if err != nil {
		metrics.AnalyticsDegradedReads.Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("timeframe", string(timeframe)).
			Msg("Event log query degraded to empty page")
		return &models.EventLog{
			Timeframe: string(timeframe),
			Rows:      []models.ActivityEvent{},
			Page:      page,
			PageSize:  pageSize,
		}
	}

	log := result.(*models.EventLog)
	if log.Rows == nil {
		log.Rows = []models.ActivityEvent{}
	}
	return log
}

// InvalidateCache clears cached reports, called after writes that should be
// visible immediately.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
}

func (s *Service) clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	defaultSize := s.cfg.DefaultPageSize
	if defaultSize <= 0 {
		defaultSize = 50
	}
	maxSize := s.cfg.MaxPageSize
	if maxSize <= 0 {
		maxSize = 200
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

// emptyOverview is the degraded "no data" report: every scalar zero, every
// list empty but non-nil.
func emptyOverview(timeframe Timeframe) *models.Overview {
	return &models.Overview{
		Timeframe:       string(timeframe),
		TopFiles:        []models.TopFile{},
		DailyHistogram:  []models.DailyBucket{},
		HourlyHistogram: []models.HourlyBucket{},
		TypeBreakdown:   []models.TypeBreakdown{},
	}
}

// fillDailyGaps inserts zero-count buckets for days inside the window with no
// events, so charts render a continuous axis.
func fillDailyGaps(buckets []models.DailyBucket, start, end time.Time) []models.DailyBucket {
	byDate := make(map[string]models.DailyBucket, len(buckets))
	for _, b := range buckets {
		byDate[b.Date] = b
	}

	var filled []models.DailyBucket
	for day := start.Truncate(24 * time.Hour); !day.After(end); day = day.Add(24 * time.Hour) {
		date := day.Format("2006-01-02")
		if b, ok := byDate[date]; ok {
			filled = append(filled, b)
		} else {
			filled = append(filled, models.DailyBucket{Date: date})
		}
	}
	if filled == nil {
		filled = []models.DailyBucket{}
	}
	return filled
}

// fillHourlyGaps expands sparse hour buckets into all 24 hours of the day.
func fillHourlyGaps(buckets []models.HourlyBucket) []models.HourlyBucket {
	byHour := make(map[int]models.HourlyBucket, len(buckets))
	for _, b := range buckets {
		byHour[b.Hour] = b
	}

	filled := make([]models.HourlyBucket, 24)
	for hour := 0; hour < 24; hour++ {
		if b, ok := byHour[hour]; ok {
			filled[hour] = b
		} else {
			filled[hour] = models.HourlyBucket{Hour: hour}
		}
	}
	return filled
}
