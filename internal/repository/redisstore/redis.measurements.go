// FilePath: internal/repository/redisstore/redis.measurements.go
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itsatony/glucohub/internal/config"
	"github.com/itsatony/glucohub/internal/errors"
	"github.com/itsatony/glucohub/internal/models"
	"github.com/itsatony/glucohub/internal/repository"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// MeasurementRepo is the redis-backed document store. Each record is a JSON
// document under a two-level key (account -> history -> doc id); a per-account
// sorted set indexes document ids by reading instant so Latest is one
// ZREVRANGE away.
type MeasurementRepo struct {
	client *redis.Client
}

// NewMeasurementRepository connects to redis and verifies the connection
func NewMeasurementRepository(cfg config.RedisConfig) (*MeasurementRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	nuts.L.Infof("[RedisStore] Connected to %s:%d/%d", cfg.Host, cfg.Port, cfg.DB)
	return &MeasurementRepo{client: client}, nil
}

// NewFromClient wraps an existing client; used by tests
func NewFromClient(client *redis.Client) *MeasurementRepo {
	return &MeasurementRepo{client: client}
}

func docKey(accountID, docID string) string {
	return fmt.Sprintf("glucohub:account:%s:history:%s", accountID, docID)
}

func indexKey(accountID string) string {
	return fmt.Sprintf("glucohub:account:%s:history:index", accountID)
}

// Save writes the document and its index entry atomically. Writing the same
// (account, doc) pair again replaces both, so duplicate recorder ticks for
// one instant collapse into a single record.
func (r *MeasurementRepo) Save(ctx context.Context, accountID, docID string, rec *models.MeasurementRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.NewInternalError("failed to encode measurement record", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, docKey(accountID, docID), payload, 0)
	pipe.ZAdd(ctx, indexKey(accountID), redis.Z{
		Score:  float64(rec.Timestamp.UnixMilli()),
		Member: docID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewDatabaseError("failed to save measurement record", err)
	}
	return nil
}

// Latest returns the record with the highest indexed instant
func (r *MeasurementRepo) Latest(ctx context.Context, accountID string) (*models.MeasurementRecord, error) {
	docIDs, err := r.client.ZRevRange(ctx, indexKey(accountID), 0, 0).Result()
	if err != nil {
		return nil, errors.NewDatabaseError("failed to query measurement index", err)
	}
	if len(docIDs) == 0 {
		return nil, repository.ErrNotFound
	}

	payload, err := r.client.Get(ctx, docKey(accountID, docIDs[0])).Result()
	if err != nil {
		if err == redis.Nil {
			// Index entry without document: self-heals on the next write.
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to load measurement record", err)
	}

	var rec models.MeasurementRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, errors.NewDatabaseError("failed to decode measurement record", err)
	}
	return &rec, nil
}

func (r *MeasurementRepo) Close() error {
	return r.client.Close()
}
