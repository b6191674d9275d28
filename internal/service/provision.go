package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jengzang/layover-backend-go/internal/apierr"
	"github.com/jengzang/layover-backend-go/internal/models"
)

// HubWriter is implemented by stores that accept hub provisioning
type HubWriter interface {
	UpsertHub(ctx context.Context, profile *models.AirportProfile) error
	UpsertHubMeta(ctx context.Context, metas []models.HubMeta) error
}

// ErrReadOnlyStore is returned when provisioning against a read-only store
var ErrReadOnlyStore = errors.New("hub store does not accept writes")

// HubDeleter is implemented by stores that can drop a hub
type HubDeleter interface {
	DeleteHub(ctx context.Context, id string) error
}

type invalidator interface {
	Invalidate(hubID string)
}

// ProvisionHub validates and stores a hub profile and optional routing
// metadata, then drops cached activity vectors of the hub.
func (s *LayoverService) ProvisionHub(ctx context.Context, id string, profile *models.AirportProfile, meta *models.HubMeta) error {
	id = models.NormalizeHubID(id)
	if id == "" {
		return apierr.InvalidInput("hub id is required")
	}
	if profile == nil {
		return apierr.InvalidInput("hub profile is required")
	}
	if pid := models.NormalizeHubID(profile.ID); pid != "" && pid != id {
		return apierr.InvalidInput("profile id %q does not match hub %q", profile.ID, id)
	}
	profile.ID = id
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	if meta != nil {
		meta.ID = id
		if strings.TrimSpace(meta.Region) == "" {
			return apierr.InvalidInput("hub meta region is required")
		}
	}

	writer, ok := s.store.(HubWriter)
	if !ok {
		return ErrReadOnlyStore
	}
	if err := writer.UpsertHub(ctx, profile); err != nil {
		return err
	}
	if meta != nil {
		if err := writer.UpsertHubMeta(ctx, []models.HubMeta{*meta}); err != nil {
			return err
		}
	}
	if inv, ok := s.vectors.(invalidator); ok {
		inv.Invalidate(id)
	}
	s.log.Info("hub provisioned", "hub", id, "activities", len(profile.Activities), "meta", meta != nil)
	return nil
}

// RemoveHub deletes a stored hub and its metadata. Unknown hubs are reported
// as not found.
func (s *LayoverService) RemoveHub(ctx context.Context, id string) error {
	id = models.NormalizeHubID(id)
	if id == "" {
		return apierr.InvalidInput("hub id is required")
	}
	deleter, ok := s.store.(HubDeleter)
	if !ok {
		return ErrReadOnlyStore
	}
	profile, err := s.store.GetHub(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		return apierr.NotFound("hub %q not found", id)
	}
	if err := deleter.DeleteHub(ctx, id); err != nil {
		return err
	}
	if inv, ok := s.vectors.(invalidator); ok {
		inv.Invalidate(id)
	}
	s.log.Info("hub removed", "hub", id)
	return nil
}

// ValidateProfile rejects catalog entries the filters cannot evaluate
func ValidateProfile(p *models.AirportProfile) error {
	seen := make(map[string]bool, len(p.Activities))
	for i, a := range p.Activities {
		if strings.TrimSpace(a.ID) == "" {
			return apierr.InvalidInput("activity %d has no id", i)
		}
		if seen[a.ID] {
			return apierr.InvalidInput("duplicate activity id %q", a.ID)
		}
		seen[a.ID] = true
		if _, ok := models.ParseZone(string(a.Location.Zone)); !ok {
			return apierr.InvalidInput("activity %q has unknown zone %q", a.ID, a.Location.Zone)
		}
		if _, ok := models.ParseActivityType(string(a.Type)); !ok {
			return apierr.InvalidInput("activity %q has unknown type %q", a.ID, a.Type)
		}
		tc := a.TimeConstraints
		if tc.MinDurationHours < 0 {
			return apierr.InvalidInput("activity %q has negative duration", a.ID)
		}
		if !tc.Is24h && (tc.OpeningHour24 < 0 || tc.OpeningHour24 > 24 || tc.ClosingHour24 < 0 || tc.ClosingHour24 > 48) {
			return apierr.InvalidInput("activity %q has opening hours out of range", a.ID)
		}
	}
	return nil
}
