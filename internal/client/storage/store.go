// Package storage is the explicit state store of the client: the profile
// and the follow-up log, persisted through a kv.Repository.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/repositories/kv"
	"github.com/dmitrijs2005/medigenie/internal/common"
)

// Store reads and writes whole values per key. Read-modify-write helpers
// are serialized so concurrent updates inside one process do not lose writes.
type Store struct {
	repo  kv.Repository
	codec Codec

	mu sync.Mutex
}

func NewStore(repo kv.Repository, codec Codec) *Store {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Store{repo: repo, codec: codec}
}

func (s *Store) load(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.repo.Get(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.codec.Decode(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.repo.Set(ctx, key, data)
}

// LoadProfile returns the stored profile, or the unregistered placeholder
// when nothing is stored yet.
func (s *Store) LoadProfile(ctx context.Context) (models.UserProfile, error) {
	p := models.NewProfile()
	if _, err := s.load(ctx, common.ProfileKey, &p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, common.ProfileKey, p)
}

// UpdateProfile loads the profile, applies fn and saves the result. Nothing
// is written if fn fails.
func (s *Store) UpdateProfile(ctx context.Context, fn func(p *models.UserProfile) error) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.LoadProfile(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}
	if err := fn(&p); err != nil {
		return models.UserProfile{}, err
	}
	if err := s.save(ctx, common.ProfileKey, p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

// LoadLogs returns the follow-up log newest first; empty when none stored.
func (s *Store) LoadLogs(ctx context.Context) ([]models.FollowUpLog, error) {
	logs := []models.FollowUpLog{}
	if _, err := s.load(ctx, common.LogsKey, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// AppendLog commits a validated draft: the entry is prepended and the whole
// collection is persisted before AppendLog returns.
func (s *Store) AppendLog(ctx context.Context, d models.FollowUpDraft, now time.Time) (models.FollowUpLog, []models.FollowUpLog, error) {
	if err := d.Validate(); err != nil {
		return models.FollowUpLog{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.LoadLogs(ctx)
	if err != nil {
		return models.FollowUpLog{}, nil, err
	}
	entry, updated := models.Commit(d, now, logs)
	if err := s.save(ctx, common.LogsKey, updated); err != nil {
		return models.FollowUpLog{}, nil, err
	}
	return entry, updated, nil
}

// Snapshot loads profile and logs together.
func (s *Store) Snapshot(ctx context.Context) (models.UserProfile, []models.FollowUpLog, error) {
	p, err := s.LoadProfile(ctx)
	if err != nil {
		return models.UserProfile{}, nil, err
	}
	logs, err := s.LoadLogs(ctx)
	if err != nil {
		return models.UserProfile{}, nil, err
	}
	return p, logs, nil
}

// Reset wipes all state.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Clear(ctx)
}
