package mesh_test

import (
	"context"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"meshguard/internal/domain"
	"meshguard/internal/services/mesh"
)

// meshWithNodes provisions a mesh and approves gateway, sensor and camera
// nodes with those tags.
func meshWithNodes(t *testing.T, s *mesh.Service) domain.Mesh {
	t.Helper()
	ctx := context.Background()
	m := provision(t, s)
	for _, tag := range []string{"gateway", "sensor", "camera"} {
		register(t, s, m, "node-"+tag)
		_, err := s.Approve(ctx, m.ID, domain.NodeID("node-"+tag), "admin", domain.ProfileDefault, []string{tag})
		require.NoError(t, err)
	}
	return m
}

func TestCheckAccess_OpenMeshThenZeroTrust(t *testing.T) {
	ctx := context.Background()
	s := newService(t, clock.NewMock())
	m := meshWithNodes(t, s)

	// No policies yet: default-profile nodes stay open.
	d, err := s.CheckAccess(m.ID, "node-sensor", "node-gateway")
	require.NoError(t, err)
	require.Equal(t, domain.ActionAllow, d.Action)
	require.Equal(t, domain.ReasonLegacyOpenMesh, d.Reason)

	// The first policy flips the mesh to zero trust.
	_, err = s.AddPolicy(ctx, m.ID, "admin", "sensor", "gateway", domain.ActionAllow)
	require.NoError(t, err)

	d, err = s.CheckAccess(m.ID, "node-sensor", "node-gateway")
	require.NoError(t, err)
	require.Equal(t, domain.ActionAllow, d.Action)
	require.Equal(t, domain.ReasonExplicitAllow, d.Reason)

	d, err = s.CheckAccess(m.ID, "node-camera", "node-gateway")
	require.NoError(t, err)
	require.Equal(t, domain.ActionDeny, d.Action)
	require.Equal(t, domain.ReasonDefaultDeny, d.Reason)
}

func TestCheckAccess_RevokedAndPending(t *testing.T) {
	ctx := context.Background()
	s := newService(t, clock.NewMock())
	m := meshWithNodes(t, s)

	require.NoError(t, s.Revoke(ctx, m.ID, "node-camera", "admin", ""))
	d, err := s.CheckAccess(m.ID, "node-sensor", "node-camera")
	require.NoError(t, err)
	require.Equal(t, domain.ActionDeny, d.Action)
	require.Equal(t, domain.ReasonPeerRevoked, d.Reason)

	register(t, s, m, "node-new")
	d, err = s.CheckAccess(m.ID, "node-new", "node-gateway")
	require.NoError(t, err)
	require.Equal(t, domain.ActionDeny, d.Action)
	require.Equal(t, domain.ReasonNotApproved, d.Reason)

	_, err = s.CheckAccess(m.ID, "node-ghost", "node-gateway")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNodeConfig_DecisionMap(t *testing.T) {
	ctx := context.Background()
	s := newService(t, clock.NewMock())
	m := meshWithNodes(t, s)

	_, err := s.AddPolicy(ctx, m.ID, "admin", "sensor", "gateway", domain.ActionAllow)
	require.NoError(t, err)
	require.NoError(t, s.Revoke(ctx, m.ID, "node-camera", "admin", "stolen"))

	cfg, err := s.NodeConfig(m.ID, "node-sensor")
	require.NoError(t, err)
	require.Equal(t, []string{"sensor"}, cfg.Tags)
	require.Len(t, cfg.Policies, 1)

	require.Equal(t, []domain.NodeID{"node-gateway"}, cfg.Allowed)
	require.Equal(t, []domain.NodeID{"node-camera"}, cfg.Denied)

	require.Equal(t, domain.ReasonExplicitAllow, cfg.Decisions["node-gateway"].Reason)
	require.Equal(t, domain.ReasonPeerRevoked, cfg.Decisions["node-camera"].Reason)
	require.NotEmpty(t, cfg.Decisions["node-gateway"].MatchedID)

	// A revoked node has no config to fetch.
	_, err = s.NodeConfig(m.ID, "node-camera")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestNodeConfig_IsolatedProfile(t *testing.T) {
	ctx := context.Background()
	s := newService(t, clock.NewMock())
	m := provision(t, s)

	register(t, s, m, "node-a")
	_, err := s.Approve(ctx, m.ID, "node-a", "admin", domain.ProfileIsolated, []string{"lab"})
	require.NoError(t, err)
	register(t, s, m, "node-b")
	_, err = s.Approve(ctx, m.ID, "node-b", "admin", domain.ProfileDefault, []string{"lab"})
	require.NoError(t, err)

	cfg, err := s.NodeConfig(m.ID, "node-a")
	require.NoError(t, err)
	require.Empty(t, cfg.Allowed)
	require.Equal(t, domain.ReasonIsolated, cfg.Decisions["node-b"].Reason)
}

func TestProfileFor_DeviceClasses(t *testing.T) {
	cases := map[domain.DeviceClass]string{
		domain.ClassEdge:    "ML-KEM-512",
		domain.ClassSensor:  "ML-KEM-512",
		domain.ClassDrone:   "ML-KEM-768",
		domain.ClassGateway: "ML-KEM-1024",
		domain.ClassServer:  "ML-KEM-1024",
		"unknown":           "ML-KEM-768",
	}
	for class, kem := range cases {
		require.Equal(t, kem, mesh.ProfileFor(class).KEM.String(), "class %s", class)
	}
}
