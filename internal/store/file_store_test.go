package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"meshguard/internal/domain"
	"meshguard/internal/services/mesh"
	"meshguard/internal/store"
)

func TestNodeIdentity_SaveLoad_OK(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	id := store.NodeIdentity{
		NodeID:           "node-1",
		KEMAlgorithm:     "ML-KEM-768",
		SigAlgorithm:     "ML-DSA-65",
		ClassicalPublic:  [32]byte{1},
		ClassicalPrivate: [32]byte{2},
		PQPublic:         []byte{3, 3, 3},
		PQPrivate:        []byte{4, 4, 4},
		SigPublic:        []byte{5, 5},
		SigPrivate:       []byte{6, 6},
		KeyID:            "abc123",
	}
	require.NoError(t, fs.SaveNodeIdentity("pass", id))

	got, ok, err := fs.LoadNodeIdentity("pass")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, id, got)

	keys, sigKeys, err := got.Keys()
	require.NoError(t, err)
	require.Equal(t, id.PQPublic, keys.PQ.Public)
	require.Equal(t, id.KeyID, keys.KeyID)
	require.Equal(t, id.SigPrivate, sigKeys.Private)
}

func TestNodeIdentity_WrongPassphrase_Fails(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveNodeIdentity("correct", store.NodeIdentity{NodeID: "node-1"}))

	_, _, err = fs.LoadNodeIdentity("wrong")
	require.Error(t, err)
}

func TestNodeIdentity_Missing_NotFound(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := fs.LoadNodeIdentity("pass")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegistry_SaveLoad_RoundTrip(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	snap := mesh.Snapshot{Meshes: []mesh.MeshSnapshot{{
		Mesh: domain.Mesh{ID: "mesh-1", Name: "lab"},
		Approved: []domain.MeshNode{{
			ID: "node-a", State: domain.StateApproved, Tags: []string{"sensor"},
		}},
		Policies: []domain.ACLPolicy{{
			ID: "pol-1", SourceTag: "sensor", TargetTag: "gateway", Action: domain.ActionAllow,
		}},
	}}}
	require.NoError(t, fs.SaveRegistry(snap))

	got, ok, err := fs.LoadRegistry()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Meshes, 1)
	require.Equal(t, snap.Meshes[0].Mesh.ID, got.Meshes[0].Mesh.ID)
	require.Equal(t, snap.Meshes[0].Approved[0].Tags, got.Meshes[0].Approved[0].Tags)
	require.Equal(t, snap.Meshes[0].Policies, got.Meshes[0].Policies)
}

func TestRegistry_Missing_NotFound(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := fs.LoadRegistry()
	require.NoError(t, err)
	require.False(t, ok)
}
