package audit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"meshguard/internal/audit"
	"meshguard/internal/domain"
)

func TestRing_EvictsOldest(t *testing.T) {
	r := audit.NewRing(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(ctx, "mesh-1", "admin", fmt.Sprintf("EVENT_%d", i), ""))
	}

	entries := r.Snapshot("mesh-1")
	require.Len(t, entries, 3)
	require.Equal(t, "EVENT_2", entries[0].Event)
	require.Equal(t, "EVENT_4", entries[2].Event)
}

func TestRing_PerMeshIsolation(t *testing.T) {
	r := audit.NewRing(10)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, "mesh-1", "admin", "A", ""))
	require.NoError(t, r.Record(ctx, "mesh-2", "admin", "B", ""))

	require.Len(t, r.Snapshot("mesh-1"), 1)
	require.Len(t, r.Snapshot("mesh-2"), 1)
	require.Empty(t, r.Snapshot("mesh-3"))
}

type failingSink struct{ err error }

func (f failingSink) Record(context.Context, domain.MeshID, string, string, string) error {
	return f.err
}

func TestFanout_DeliversToAllAndReportsFirstError(t *testing.T) {
	r := audit.NewRing(10)
	boom := errors.New("sink down")
	f := audit.Fanout{failingSink{err: boom}, r}

	err := f.Record(context.Background(), "mesh-1", "admin", "EVENT", "details")
	require.ErrorIs(t, err, boom)

	// The healthy sink still received the event.
	require.Len(t, r.Snapshot("mesh-1"), 1)
}
