// Package postgres implements the PostgreSQL persistence layer for Seedling.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/seedling-app/seedling-backend/internal/domain/mission"
	"github.com/seedling-app/seedling-backend/internal/domain/shared"
	"github.com/seedling-app/seedling-backend/pkg/studycal"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MISSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const missionColumns = `
	id, family_relation_id, category_id, start_date, end_date,
	reward_title, reward_message, status, version, created_at, updated_at
`

// MissionRepository implements mission.Repository for PostgreSQL.
type MissionRepository struct {
	conn *Connection
}

// NewMissionRepository creates a new MissionRepository.
func NewMissionRepository(conn *Connection) *MissionRepository {
	return &MissionRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Create persists a new mission.
func (r *MissionRepository) Create(ctx context.Context, m *mission.Mission) error {
	query := `
		INSERT INTO missions (
			id, family_relation_id, category_id, start_date, end_date,
			reward_title, reward_message, status, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.conn.Exec(ctx, query,
		m.ID,
		m.FamilyRelationID,
		nullableID(m.CategoryID),
		m.Period.StartDate,
		m.Period.EndDate,
		m.Reward.Title,
		nullableText(m.Reward.Message),
		string(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrMissionAlreadyExists
		}
		return fmt.Errorf("failed to create mission: %w", err)
	}

	return nil
}

// Update persists a changed mission with an optimistic version check.
// The row is only written if the stored version still equals m.Version;
// a stale writer gets shared.ErrOptimisticLock and must re-read. On
// success the version is bumped both in the row and on m, and a status
// change is appended to the history table.
func (r *MissionRepository) Update(ctx context.Context, m *mission.Mission) error {
	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var prevStatus string
		err := tx.QueryRow(ctx,
			`SELECT status FROM missions WHERE id = $1`, m.ID,
		).Scan(&prevStatus)
		if err != nil {
			if IsNoRows(err) {
				return shared.ErrMissionNotFound
			}
			return fmt.Errorf("failed to read mission for update: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE missions SET
				status = $1,
				version = version + 1,
				updated_at = $2
			WHERE id = $3 AND version = $4
		`,
			string(m.Status),
			m.UpdatedAt,
			m.ID,
			m.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update mission: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Row exists but the version moved under us.
			return shared.ErrOptimisticLock
		}

		if prevStatus != string(m.Status) {
			_, err = tx.Exec(ctx, `
				INSERT INTO mission_status_history (mission_id, from_status, to_status, changed_at)
				VALUES ($1, $2, $3, $4)
			`, m.ID, prevStatus, string(m.Status), m.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to record status change: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.Version++
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns a mission by ID.
func (r *MissionRepository) GetByID(ctx context.Context, id string) (*mission.Mission, error) {
	query := `SELECT ` + missionColumns + ` FROM missions WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	m, err := r.scanMission(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrMissionNotFound
		}
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return m, nil
}

// FindOverdue returns open missions whose end date lies strictly before
// the given date. The partial index on (end_date) keeps this cheap even
// as terminal rows accumulate.
func (r *MissionRepository) FindOverdue(ctx context.Context, today time.Time) ([]*mission.Mission, error) {
	query := `
		SELECT ` + missionColumns + `
		FROM missions
		WHERE status = ANY($1)
		  AND end_date < $2
		ORDER BY end_date, id
	`

	rows, err := r.conn.Query(ctx, query,
		statusStrings(mission.InProgressStatuses()),
		studycal.StartOfDay(today),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue missions: %w", err)
	}
	defer rows.Close()

	return r.scanMissions(rows)
}

// FindByFamilyRelation returns the missions of a family relation,
// optionally filtered by phase.
func (r *MissionRepository) FindByFamilyRelation(ctx context.Context, familyRelationID string, phase mission.Phase) ([]*mission.Mission, error) {
	query := `
		SELECT ` + missionColumns + `
		FROM missions
		WHERE family_relation_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{familyRelationID}

	if phase != "" {
		query = `
			SELECT ` + missionColumns + `
			FROM missions
			WHERE family_relation_id = $1
			  AND (status = ANY($2)) = $3
			ORDER BY created_at DESC
		`
		args = append(args,
			statusStrings(mission.InProgressStatuses()),
			phase == mission.PhaseInProgress,
		)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query missions by relation: %w", err)
	}
	defer rows.Close()

	return r.scanMissions(rows)
}

// ExistsActive reports whether the family relation already has an open
// mission in the given category.
func (r *MissionRepository) ExistsActive(ctx context.Context, familyRelationID, categoryID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM missions
			WHERE family_relation_id = $1
			  AND category_id IS NOT DISTINCT FROM $2
			  AND status = ANY($3)
		)
	`

	var exists bool
	err := r.conn.QueryRow(ctx, query,
		familyRelationID,
		nullableID(categoryID),
		statusStrings(mission.InProgressStatuses()),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active mission: %w", err)
	}
	return exists, nil
}

// CountByStatus returns how many missions are in each status.
func (r *MissionRepository) CountByStatus(ctx context.Context) (map[mission.Status]int, error) {
	query := `SELECT status, COUNT(*) FROM missions GROUP BY status`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count missions: %w", err)
	}
	defer rows.Close()

	counts := make(map[mission.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[mission.Status(status)] = count
	}

	return counts, rows.Err()
}

// StatusHistory returns the recorded transitions of a mission, newest first.
func (r *MissionRepository) StatusHistory(ctx context.Context, missionID string) ([]StatusChange, error) {
	query := `
		SELECT from_status, to_status, changed_at
		FROM mission_status_history
		WHERE mission_id = $1
		ORDER BY changed_at DESC, id DESC
	`

	rows, err := r.conn.Query(ctx, query, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var history []StatusChange
	for rows.Next() {
		var c StatusChange
		var from, to string
		if err := rows.Scan(&from, &to, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		c.From = mission.Status(from)
		c.To = mission.Status(to)
		history = append(history, c)
	}

	return history, rows.Err()
}

// StatusChange is one recorded transition of a mission.
type StatusChange struct {
	From      mission.Status
	To        mission.Status
	ChangedAt time.Time
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *MissionRepository) scanMission(row pgx.Row) (*mission.Mission, error) {
	var m mission.Mission
	var categoryID, rewardMessage *string
	var startDate, endDate time.Time
	var status string

	err := row.Scan(
		&m.ID,
		&m.FamilyRelationID,
		&categoryID,
		&startDate,
		&endDate,
		&m.Reward.Title,
		&rewardMessage,
		&status,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		m.CategoryID = *categoryID
	}
	if rewardMessage != nil {
		m.Reward.Message = *rewardMessage
	}
	// DATE columns come back at UTC midnight; re-anchor them to the study
	// calendar's timezone.
	m.Period.StartDate = studycal.Date(startDate.Year(), int(startDate.Month()), startDate.Day())
	m.Period.EndDate = studycal.Date(endDate.Year(), int(endDate.Month()), endDate.Day())
	m.Status = mission.Status(status)

	return &m, nil
}

func (r *MissionRepository) scanMissions(rows pgx.Rows) ([]*mission.Mission, error) {
	var missions []*mission.Mission
	for rows.Next() {
		m, err := r.scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

func statusStrings(statuses []mission.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func nullableID(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
