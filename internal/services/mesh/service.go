package mesh

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"meshguard/internal/domain"
)

// Join-credential TTL bounds. Expiry is checked at use time, never at
// issuance.
const (
	MinJoinTTL     = time.Hour
	MaxJoinTTL     = 30 * 24 * time.Hour
	DefaultJoinTTL = 7 * 24 * time.Hour
)

// Reissue-token TTL bounds.
const (
	MinReissueTTL     = time.Minute
	MaxReissueTTL     = 30 * 24 * time.Hour
	DefaultReissueTTL = time.Hour
)

// meshState is everything the registry tracks for one mesh. Guarded by
// Service.mu; never escapes the lock by reference.
type meshState struct {
	mesh     domain.Mesh
	approved map[domain.NodeID]*domain.MeshNode
	pending  map[domain.NodeID]*domain.MeshNode
	revoked  map[domain.NodeID]*domain.Tombstone
	tokens   map[string]*domain.ReissueToken
	policies []domain.ACLPolicy
}

// Options configures a Service. Signer is required; the rest default.
type Options struct {
	Signer    domain.TokenSigner
	Audit     domain.AuditSink
	Attest    domain.AttestationValidator
	Clock     clock.Clock
	Snapshots SnapshotStore
	Logger    *slog.Logger
}

// Service is the process-wide mesh registry.
type Service struct {
	mu     sync.Mutex
	meshes map[domain.MeshID]*meshState

	signer    domain.TokenSigner
	audit     domain.AuditSink
	attest    domain.AttestationValidator
	clock     clock.Clock
	snapshots SnapshotStore
	logger    *slog.Logger
}

// New builds the registry, restoring any persisted snapshot.
func New(opts Options) (*Service, error) {
	if opts.Signer == nil {
		return nil, fmt.Errorf("%w: token signer is required", domain.ErrConfiguration)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Service{
		meshes:    make(map[domain.MeshID]*meshState),
		signer:    opts.Signer,
		audit:     opts.Audit,
		attest:    opts.Attest,
		clock:     opts.Clock,
		snapshots: opts.Snapshots,
		logger:    opts.Logger,
	}
	if opts.Snapshots != nil {
		snap, ok, err := opts.Snapshots.LoadRegistry()
		if err != nil {
			return nil, fmt.Errorf("restore registry: %w", err)
		}
		if ok {
			s.restore(snap)
		}
	}
	return s, nil
}

// ProvisionOptions tunes a new mesh.
type ProvisionOptions struct {
	JoinTTL time.Duration
}

// Provision creates a mesh with a fresh join credential.
func (s *Service) Provision(ctx context.Context, name, ownerID string, opts ProvisionOptions) (domain.Mesh, error) {
	ttl := clampTTL(opts.JoinTTL, MinJoinTTL, MaxJoinTTL, DefaultJoinTTL)
	now := s.clock.Now().UTC()

	m := domain.Mesh{
		ID:             domain.MeshID("mesh-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]),
		Name:           name,
		OwnerID:        ownerID,
		CreatedAt:      now,
		JoinCredential: "join_" + randomToken(),
		JoinIssuedAt:   now,
		JoinExpiresAt:  now.Add(ttl),
	}

	s.mu.Lock()
	s.meshes[m.ID] = &meshState{
		mesh:     m,
		approved: make(map[domain.NodeID]*domain.MeshNode),
		pending:  make(map[domain.NodeID]*domain.MeshNode),
		revoked:  make(map[domain.NodeID]*domain.Tombstone),
		tokens:   make(map[string]*domain.ReissueToken),
	}
	s.persistLocked()
	s.mu.Unlock()

	s.record(ctx, m.ID, ownerID, "MESH_PROVISIONED",
		fmt.Sprintf("Mesh %s created, join credential valid for %s", m.Name, ttl))
	return m, nil
}

// Mesh returns a copy of a mesh's registry record.
func (s *Service) Mesh(meshID domain.MeshID) (domain.Mesh, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.meshes[meshID]
	if !ok {
		return domain.Mesh{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	return ms.mesh, nil
}

// RotateJoinCredential replaces the mesh join credential. The previous
// credential stops matching immediately.
func (s *Service) RotateJoinCredential(ctx context.Context, meshID domain.MeshID, actor string, ttl time.Duration) (domain.SignedToken, time.Time, error) {
	ttl = clampTTL(ttl, MinJoinTTL, MaxJoinTTL, DefaultJoinTTL)
	now := s.clock.Now().UTC()
	credential := "join_" + randomToken()

	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return domain.SignedToken{}, time.Time{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	ms.mesh.JoinCredential = credential
	ms.mesh.JoinIssuedAt = now
	ms.mesh.JoinExpiresAt = now.Add(ttl)
	expires := ms.mesh.JoinExpiresAt
	s.persistLocked()
	s.mu.Unlock()

	signed, err := s.signer.SignToken(credential, meshID)
	if err != nil {
		return domain.SignedToken{}, time.Time{}, fmt.Errorf("sign join credential: %w", err)
	}
	s.record(ctx, meshID, actor, "JOIN_CREDENTIAL_ROTATED",
		fmt.Sprintf("New join credential expires %s", expires.Format(time.RFC3339)))
	return signed, expires, nil
}

// record forwards to the audit sink. Sink failures are logged and
// swallowed; they never abort the triggering operation.
func (s *Service) record(ctx context.Context, meshID domain.MeshID, actor, event, details string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, meshID, actor, event, details); err != nil {
		s.logger.Warn("audit sink failed", "event", event, "mesh", meshID.String(), "error", err)
	}
}

// persistLocked snapshots the registry to the snapshot store, if any.
// Callers hold s.mu.
func (s *Service) persistLocked() {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SaveRegistry(s.snapshotLocked()); err != nil {
		s.logger.Warn("registry snapshot failed", "error", err)
	}
}

func clampTTL(ttl, min, max, def time.Duration) time.Duration {
	if ttl == 0 {
		return def
	}
	if ttl < min {
		return min
	}
	if ttl > max {
		return max
	}
	return ttl
}

// randomToken returns a 32-byte URL-safe random token.
func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure means the process has no usable entropy
		// source; continuing would issue guessable credentials.
		panic(errors.Join(errors.New("entropy source unavailable"), err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
