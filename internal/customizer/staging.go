package customizer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"job-applier/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// DefaultStagingTTL bounds how long an unclaimed staging record is kept.
const DefaultStagingTTL = 24 * time.Hour

// StagingStore hands staging records to the content-generation collaborator
// through Redis, keyed by application id.
type StagingStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStagingStore(client *redis.Client, ttl time.Duration) *StagingStore {
	if ttl <= 0 {
		ttl = DefaultStagingTTL
	}
	return &StagingStore{redis: client, ttl: ttl}
}

func stagingKey(applicationID int64) string {
	return "staging:" + strconv.FormatInt(applicationID, 10)
}

// Publish stores rec under its application id, replacing any earlier record.
func (s *StagingStore) Publish(ctx context.Context, rec *StagingRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.NewCacheError("encode staging record", err)
	}
	if err := s.redis.Set(ctx, stagingKey(rec.ApplicationID), data, s.ttl).Err(); err != nil {
		return errors.NewCacheError("publish staging record", err)
	}
	return nil
}

// Get returns the staging record for an application.
func (s *StagingStore) Get(ctx context.Context, applicationID int64) (*StagingRecord, error) {
	data, err := s.redis.Get(ctx, stagingKey(applicationID)).Bytes()
	if err == redis.Nil {
		return nil, errors.NewNotFoundError("staging record", strconv.FormatInt(applicationID, 10))
	}
	if err != nil {
		return nil, errors.NewCacheError("get staging record", err)
	}

	var rec StagingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.NewCacheError("decode staging record", err)
	}
	return &rec, nil
}
