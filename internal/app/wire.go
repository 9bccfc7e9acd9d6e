package app

import (
	"fmt"
	"log/slog"

	"meshguard/internal/attest"
	"meshguard/internal/audit"
	"meshguard/internal/pqc"
	"meshguard/internal/services/mesh"
	"meshguard/internal/signer"
	"meshguard/internal/store"
)

// Wire bundles the stores, backend and services for the CLI.
type Wire struct {
	Config  Config
	Backend *pqc.Backend
	Signer  *signer.PQSigner
	Store   *store.FileStore
	Ring    *audit.Ring
	Mesh    *mesh.Service
	Logger  *slog.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, logger *slog.Logger) (*Wire, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := pqc.NewBackend(cfg.KEMAlgorithm, cfg.SigAlgorithm)
	if err != nil {
		return nil, err
	}
	tokenSigner, err := signer.New(backend)
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}
	fileStore, err := store.NewFileStore(cfg.Home)
	if err != nil {
		return nil, err
	}

	ring := audit.NewRing(cfg.AuditRingSize)
	sinks := audit.Fanout{&audit.SlogSink{Logger: logger}, ring}

	meshSvc, err := mesh.New(mesh.Options{
		Signer:    tokenSigner,
		Audit:     sinks,
		Attest:    attest.Heuristic{},
		Snapshots: fileStore,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &Wire{
		Config:  cfg,
		Backend: backend,
		Signer:  tokenSigner,
		Store:   fileStore,
		Ring:    ring,
		Mesh:    meshSvc,
		Logger:  logger,
	}, nil
}
