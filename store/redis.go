package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	mindpulse "github.com/cogniFlowTech/mindpulse-orchestrator-go"
)

// RedisReportStore implements mindpulse.ReportStore on Redis.
// Per-session analysis ticks are appended to "{prefix}:{sessionID}:analysis"
// as a list of JSON records; the final report lives at
// "{prefix}:report:{sessionID}".
type RedisReportStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "mp"
	TTL    time.Duration // expiry for reports and histories, 0 = no expiry
}

// NewRedisReportStore creates a ReportStore backed by Redis.
func NewRedisReportStore(client redis.UniversalClient, config ...RedisStoreConfig) *RedisReportStore {
	cfg := RedisStoreConfig{Prefix: "mp"}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "mp"
	}
	return &RedisReportStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

func (s *RedisReportStore) analysisKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:analysis", s.prefix, sessionID)
}

func (s *RedisReportStore) reportKey(sessionID string) string {
	return fmt.Sprintf("%s:report:%s", s.prefix, sessionID)
}

// SaveAnalysis appends one integrated analysis to the session's history.
func (s *RedisReportStore) SaveAnalysis(sessionID string, analysis *mindpulse.IntegratedAnalysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	ctx := context.Background()
	key := s.analysisKey(sessionID)
	if err := s.client.RPush(ctx, key, string(data)).Err(); err != nil {
		return err
	}
	if s.ttl > 0 {
		return s.client.Expire(ctx, key, s.ttl).Err()
	}
	return nil
}

// SaveReport stores the final session report.
func (s *RedisReportStore) SaveReport(report *mindpulse.SessionReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.client.Set(context.Background(), s.reportKey(report.Session.ID), string(data), s.ttl).Err()
}

// LoadReport fetches a stored report. Returns (nil, nil) when absent.
func (s *RedisReportStore) LoadReport(sessionID string) (*mindpulse.SessionReport, error) {
	raw, err := s.client.Get(context.Background(), s.reportKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var report mindpulse.SessionReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// AnalysisHistory fetches the stored analysis ticks of a session,
// oldest-first.
func (s *RedisReportStore) AnalysisHistory(sessionID string) ([]*mindpulse.IntegratedAnalysis, error) {
	items, err := s.client.LRange(context.Background(), s.analysisKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	history := make([]*mindpulse.IntegratedAnalysis, 0, len(items))
	for _, raw := range items {
		var a mindpulse.IntegratedAnalysis
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, err
		}
		history = append(history, &a)
	}
	return history, nil
}

// AnalysisCount returns the number of stored ticks for a session.
func (s *RedisReportStore) AnalysisCount(sessionID string) (int, error) {
	n, err := s.client.LLen(context.Background(), s.analysisKey(sessionID)).Result()
	return int(n), err
}

// Compile-time interface check.
var _ mindpulse.ReportStore = (*RedisReportStore)(nil)
