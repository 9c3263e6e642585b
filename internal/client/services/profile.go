// Package services holds the application services of the client: profile
// management, twin building and simulation, the follow-up coordinator, the
// chat orchestrator and the advisory tools.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/storage"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/dmitrijs2005/medigenie/internal/logging"
)

// ProfileService owns the baseline profile fields. Derived fields
// (healthSummary, digitalTwin) are never written here.
type ProfileService struct {
	store *storage.Store
	log   logging.Logger
}

func NewProfileService(store *storage.Store, log logging.Logger) *ProfileService {
	return &ProfileService{store: store, log: log}
}

func (s *ProfileService) Get(ctx context.Context) (models.UserProfile, error) {
	return s.store.LoadProfile(ctx)
}

// Registered returns the profile, or ErrNotRegistered.
func (s *ProfileService) Registered(ctx context.Context) (models.UserProfile, error) {
	p, err := s.store.LoadProfile(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}
	if err := requireRegistered(p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func requireRegistered(p models.UserProfile) error {
	if !p.IsRegistered {
		return common.ErrNotRegistered
	}
	return nil
}

// Register performs the one-time false→true registration transition.
func (s *ProfileService) Register(ctx context.Context, d models.Demographics) (models.UserProfile, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return models.UserProfile{}, err
	}

	p, err := s.store.UpdateProfile(ctx, func(p *models.UserProfile) error {
		if p.IsRegistered {
			return common.ErrAlreadyRegistered
		}
		p.Demographics = d
		p.IsRegistered = true
		return nil
	})
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("register: %w", err)
	}

	s.log.Info(ctx, "profile registered", "language", p.PreferredLanguage)
	return p, nil
}

// Edit replaces the demographic fields of a registered profile.
func (s *ProfileService) Edit(ctx context.Context, d models.Demographics) (models.UserProfile, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return models.UserProfile{}, err
	}

	p, err := s.store.UpdateProfile(ctx, func(p *models.UserProfile) error {
		if err := requireRegistered(*p); err != nil {
			return err
		}
		p.Demographics = d
		return nil
	})
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("edit profile: %w", err)
	}

	s.log.Info(ctx, "profile updated")
	return p, nil
}

// SetLanguage changes only the preferred language.
func (s *ProfileService) SetLanguage(ctx context.Context, lang string) (models.UserProfile, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return models.UserProfile{}, common.Invalid("preferredLanguage", "is required")
	}

	p, err := s.store.UpdateProfile(ctx, func(p *models.UserProfile) error {
		if err := requireRegistered(*p); err != nil {
			return err
		}
		p.PreferredLanguage = lang
		return nil
	})
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("set language: %w", err)
	}
	return p, nil
}

// Logs returns the follow-up history, newest first, or ErrNotRegistered.
func (s *ProfileService) Logs(ctx context.Context) ([]models.FollowUpLog, error) {
	if _, err := s.Registered(ctx); err != nil {
		return nil, err
	}
	return s.store.LoadLogs(ctx)
}
