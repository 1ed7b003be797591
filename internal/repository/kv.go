package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV holds named entries. The reservation store keeps its whole collection
// under a single key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type kvEntryModel struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string    `gorm:"column:value;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (kvEntryModel) TableName() string { return "kv_entries" }

type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

// Migrate creates the kv_entries table when it is missing.
func (r *GormKV) Migrate() error {
	return r.db.AutoMigrate(&kvEntryModel{})
}

func (r *GormKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var m kvEntryModel
	err := r.db.WithContext(ctx).Where("entry_key = ?", key).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(m.Value), true, nil
}

func (r *GormKV) Set(ctx context.Context, key string, value []byte) error {
	m := kvEntryModel{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
}

type RedisKV struct {
	rdb *redis.Client
}

func NewRedisKV(rdb *redis.Client) *RedisKV {
	return &RedisKV{rdb: rdb}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	bs, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return bs, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, key, value, 0).Err()
}

type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.entries[key] = v
	return nil
}
