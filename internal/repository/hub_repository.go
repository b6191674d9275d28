package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jengzang/layover-backend-go/internal/database"
	"github.com/jengzang/layover-backend-go/internal/models"
)

// HubRepository handles database operations for hub profiles and metadata
type HubRepository struct {
	db *sql.DB
}

// NewHubRepository creates a new hub repository
func NewHubRepository(db *sql.DB) *HubRepository {
	return &HubRepository{db: db}
}

// GetHub loads the full profile of a hub. A missing hub returns (nil, nil).
func (r *HubRepository) GetHub(ctx context.Context, id string) (*models.AirportProfile, error) {
	id = models.NormalizeHubID(id)
	if id == "" {
		return nil, nil
	}

	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT full_data FROM hubs WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query hub %s: %w", id, err)
	}

	var profile models.AirportProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode hub %s: %w", id, err)
	}
	if profile.ID == "" {
		profile.ID = id
	}
	return &profile, nil
}

// ListHubIDs returns the ids of all stored hub profiles
func (r *HubRepository) ListHubIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM hubs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query hubs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan hub id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListHubMeta returns the routing metadata of every hub keyed by id
func (r *HubRepository) ListHubMeta(ctx context.Context) (map[string]models.HubMeta, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, code, region, popularity, friction,
		late_night_strength, airside_strength, landside_strength
		FROM hub_meta ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hub meta: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.HubMeta)
	for rows.Next() {
		var m models.HubMeta
		err := rows.Scan(
			&m.ID, &m.Name, &m.Code, &m.Region, &m.Popularity, &m.Friction,
			&m.LateNightStrength, &m.AirsideStrength, &m.LandsideStrength,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hub meta: %w", err)
		}
		out[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hub meta: %w", err)
	}
	return out, nil
}

// UpsertHub stores a hub profile, replacing any previous version
func (r *HubRepository) UpsertHub(ctx context.Context, profile *models.AirportProfile) error {
	if profile == nil {
		return fmt.Errorf("hub profile is nil")
	}
	id := models.NormalizeHubID(profile.ID)
	if id == "" {
		return fmt.Errorf("hub profile has no id")
	}
	profile.ID = id

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode hub %s: %w", id, err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO hubs (id, full_data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET full_data = excluded.full_data, updated_at = CURRENT_TIMESTAMP`,
		id, string(data))
	if err != nil {
		return fmt.Errorf("failed to upsert hub %s: %w", id, err)
	}
	return nil
}

// UpsertHubMeta stores routing metadata for a batch of hubs in one transaction
func (r *HubRepository) UpsertHubMeta(ctx context.Context, metas []models.HubMeta) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO hub_meta
			(id, name, code, region, popularity, friction, late_night_strength, airside_strength, landside_strength, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, code = excluded.code, region = excluded.region,
				popularity = excluded.popularity, friction = excluded.friction,
				late_night_strength = excluded.late_night_strength,
				airside_strength = excluded.airside_strength,
				landside_strength = excluded.landside_strength,
				updated_at = CURRENT_TIMESTAMP`)
		if err != nil {
			return fmt.Errorf("failed to prepare hub meta upsert: %w", err)
		}
		defer stmt.Close()

		for _, m := range metas {
			id := models.NormalizeHubID(m.ID)
			if id == "" {
				return fmt.Errorf("hub meta has no id")
			}
			_, err := stmt.ExecContext(ctx, id, m.Name, m.Code, m.Region, m.Popularity, m.Friction,
				m.LateNightStrength, m.AirsideStrength, m.LandsideStrength)
			if err != nil {
				return fmt.Errorf("failed to upsert hub meta %s: %w", id, err)
			}
		}
		return nil
	})
}

// DeleteHub removes a hub profile and its metadata
func (r *HubRepository) DeleteHub(ctx context.Context, id string) error {
	id = models.NormalizeHubID(id)
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM hubs WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete hub %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM hub_meta WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete hub meta %s: %w", id, err)
		}
		return nil
	})
}
