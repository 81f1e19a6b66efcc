package postgres

import (
	"context"
	"errors"
	"time"

	"moviehub/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryModel is one row of the kv_entries table.
type EntryModel struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"not null;column:value"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

func (EntryModel) TableName() string {
	return "kv_entries"
}

// KVStore implements kv.Store on top of kv_entries.
type KVStore struct {
	db *gorm.DB
}

func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var model EntryModel
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Wrap(errs.EPERSISTENCE, err, "cannot read entry")
	}
	return model.Value, true, nil
}

// Set inserts the entry or overwrites the stored value.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	model := EntryModel{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return errs.Wrap(errs.EPERSISTENCE, err, "cannot write entry")
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&EntryModel{}).Error
	if err != nil {
		return errs.Wrap(errs.EPERSISTENCE, err, "cannot remove entry")
	}
	return nil
}
