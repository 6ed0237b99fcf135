package state

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/stablecore/sce/internal/types"
)

func record(id, kind, participant, counterparty string) types.EventRecord {
	return types.EventRecord{
		ID:           id,
		Kind:         types.EventKind(kind),
		Participant:  participant,
		Counterparty: counterparty,
		Collateral:   sdktypes.NewCoin("uweth", sdkmath.NewInt(1)),
		DebtCovered:  sdkmath.ZeroInt(),
		Timestamp:    time.Now(),
	}
}

func TestMemoryJournalRecordsInOrder(t *testing.T) {
	j := NewMemoryJournal()

	require.NoError(t, j.Record(record("a", "deposit", "alice", "")))
	require.NoError(t, j.Record(record("b", "redeem", "alice", "alice")))

	events := j.Events()
	require.Len(t, events, 2)
	require.Equal(t, "a", events[0].ID)
	require.Equal(t, "b", events[1].ID)
}

func TestMemoryJournalRecentEvents(t *testing.T) {
	j := NewMemoryJournal()
	require.NoError(t, j.Record(record("a", "deposit", "alice", "")))
	require.NoError(t, j.Record(record("b", "deposit", "bob", "")))
	require.NoError(t, j.Record(record("c", "deposit", "carol", "")))

	recent, err := j.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// Newest first.
	require.Equal(t, "c", recent[0].ID)
	require.Equal(t, "b", recent[1].ID)
}

func TestMemoryJournalEventsForParticipant(t *testing.T) {
	j := NewMemoryJournal()
	require.NoError(t, j.Record(record("a", "deposit", "alice", "")))
	require.NoError(t, j.Record(record("b", "deposit", "bob", "")))
	require.NoError(t, j.Record(record("c", "liquidation", "alice", "bob")))

	events, err := j.EventsForParticipant("bob", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "c", events[0].ID)
	require.Equal(t, "b", events[1].ID)
}
