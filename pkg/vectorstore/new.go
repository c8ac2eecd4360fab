package vectorstore

import (
	"context"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
)

// New builds a Store backed by Postgres when dbCfg.DSN is set, or an
// in-memory fallback (optionally persisted to vsCfg.FallbackPath)
// otherwise — the §7 "degraded recall" path.
func New(ctx context.Context, dbCfg config.DatabaseConfig, vsCfg config.VectorStoreConfig) (*Store, error) {
	if dbCfg.DSN == "" {
		return &Store{backend: newMemoryBackend(vsCfg.FallbackPath)}, nil
	}

	b, err := newPGBackend(ctx, dbCfg.DSN, dbCfg.MaxOpenConns, dbCfg.MaxIdleConns)
	if err != nil {
		return nil, err
	}
	return &Store{backend: b}, nil
}
