// ./internal/state/events.go
package state

import (
	"database/sql"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog/log"

	"github.com/stablecore/sce/internal/types"
)

// SaveEvent persists a single engine event record.
func SaveEvent(ev types.EventRecord) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO engine_events (
			event_id, event_kind, participant, counterparty,
			collateral_denom, collateral_amount, debt_covered, event_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := DB.Exec(query,
		ev.ID,
		string(ev.Kind),
		ev.Participant,
		ev.Counterparty,
		ev.Collateral.Denom,
		ev.Collateral.Amount.String(),
		ev.DebtCovered.String(),
		ev.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert engine event %s: %w", ev.ID, err)
	}
	return nil
}

// LoadRecentEvents returns the most recent events, newest first.
func LoadRecentEvents(limit int) ([]types.EventRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT event_id, event_kind, participant, counterparty,
		       collateral_denom, collateral_amount, debt_covered, event_timestamp
		FROM engine_events
		ORDER BY event_timestamp DESC
		LIMIT $1
	`
	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query engine events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LoadEventsForParticipant returns the most recent events touching
// participant, newest first.
func LoadEventsForParticipant(participant string, limit int) ([]types.EventRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT event_id, event_kind, participant, counterparty,
		       collateral_denom, collateral_amount, debt_covered, event_timestamp
		FROM engine_events
		WHERE participant = $1 OR counterparty = $1
		ORDER BY event_timestamp DESC
		LIMIT $2
	`
	rows, err := DB.Query(query, participant, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for %s: %w", participant, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]types.EventRecord, error) {
	var events []types.EventRecord
	for rows.Next() {
		var (
			ev           types.EventRecord
			kind         string
			counterparty sql.NullString
			denom        string
			amountStr    string
			debtStr      string
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.Participant, &counterparty,
			&denom, &amountStr, &debtStr, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan engine event row: %w", err)
		}
		ev.Kind = types.EventKind(kind)
		ev.Counterparty = counterparty.String

		amount, ok := sdkmath.NewIntFromString(amountStr)
		if !ok {
			return nil, fmt.Errorf("invalid collateral amount in event %s: %s", ev.ID, amountStr)
		}
		ev.Collateral = sdktypes.NewCoin(denom, amount)

		debt, ok := sdkmath.NewIntFromString(debtStr)
		if !ok {
			return nil, fmt.Errorf("invalid debt amount in event %s: %s", ev.ID, debtStr)
		}
		ev.DebtCovered = debt

		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engine event rows: %w", err)
	}
	return events, nil
}

// Journal persists engine events to PostgreSQL.
type Journal struct{}

// NewJournal returns a Journal backed by the global connection pool.
func NewJournal() *Journal {
	return &Journal{}
}

// Record implements the engine's event sink against the database.
func (j *Journal) Record(ev types.EventRecord) error {
	if err := SaveEvent(ev); err != nil {
		return err
	}
	log.Debug().
		Str("event_id", ev.ID).
		Str("kind", string(ev.Kind)).
		Msg("Engine event persisted")
	return nil
}

// RecentEvents returns the most recent events, newest first.
func (j *Journal) RecentEvents(limit int) ([]types.EventRecord, error) {
	return LoadRecentEvents(limit)
}

// EventsForParticipant returns the most recent events touching participant.
func (j *Journal) EventsForParticipant(participant string, limit int) ([]types.EventRecord, error) {
	return LoadEventsForParticipant(participant, limit)
}

// MemoryJournal keeps engine events in memory. Used in dry mode and tests,
// where no database is configured.
type MemoryJournal struct {
	mu     sync.Mutex
	events []types.EventRecord
}

// NewMemoryJournal returns an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Record appends the event.
func (m *MemoryJournal) Record(ev types.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of every recorded event in order.
func (m *MemoryJournal) Events() []types.EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.EventRecord, len(m.events))
	copy(out, m.events)
	return out
}

// RecentEvents returns the most recent events, newest first.
func (m *MemoryJournal) RecentEvents(limit int) ([]types.EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.EventRecord
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

// EventsForParticipant returns the most recent events touching participant.
func (m *MemoryJournal) EventsForParticipant(participant string, limit int) ([]types.EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.EventRecord
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		ev := m.events[i]
		if ev.Participant == participant || ev.Counterparty == participant {
			out = append(out, ev)
		}
	}
	return out, nil
}
