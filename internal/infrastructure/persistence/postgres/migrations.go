// Package postgres implements the PostgreSQL persistence layer for Seedling.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE MISSIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create missions table
-- Version: 001

CREATE TABLE IF NOT EXISTS missions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    family_relation_id UUID NOT NULL,
    category_id UUID,
    start_date DATE NOT NULL,
    end_date DATE NOT NULL,
    reward_title VARCHAR(100) NOT NULL,
    reward_message VARCHAR(500),
    status VARCHAR(20) NOT NULL DEFAULT 'APPROVAL_REQUEST',
    version INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Constraints for data integrity
    CONSTRAINT valid_status CHECK (status IN (
        'APPROVAL_REQUEST', 'APPROVAL_ACCEPTED', 'APPROVAL_REJECTED',
        'IN_PROGRESS', 'COMPLETED', 'FAILED',
        'REWARD_REQUESTED', 'REWARD_COMPLETED'
    )),
    CONSTRAINT valid_period CHECK (start_date <= end_date),
    CONSTRAINT valid_version CHECK (version >= 1)
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_missions_family_relation ON missions(family_relation_id);
CREATE INDEX IF NOT EXISTS idx_missions_category ON missions(category_id);
CREATE INDEX IF NOT EXISTS idx_missions_status ON missions(status);

-- Partial index for the nightly sweep: only missions still in flight
-- are candidates for expiry.
CREATE INDEX IF NOT EXISTS idx_missions_open_end_date ON missions(end_date)
    WHERE status IN ('APPROVAL_REQUEST', 'APPROVAL_ACCEPTED', 'IN_PROGRESS');
`

const migration001Down = `
DROP TABLE IF EXISTS missions;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE MISSION STATUS HISTORY
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create mission_status_history table
-- Version: 002

-- Every transition is appended here so parents can see how a mission
-- reached its current state.
CREATE TABLE IF NOT EXISTS mission_status_history (
    id SERIAL PRIMARY KEY,
    mission_id UUID NOT NULL REFERENCES missions(id) ON DELETE CASCADE,
    from_status VARCHAR(20) NOT NULL,
    to_status VARCHAR(20) NOT NULL,
    reason VARCHAR(200),
    changed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_mission_history_mission ON mission_status_history(mission_id, changed_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS mission_status_history;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_missions",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_mission_status_history",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
