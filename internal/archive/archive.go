// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

// Package archive persists produced clusters and alerts into a local
// BadgerDB store. It is the hand-off point for the external storage layer:
// write-only from the pipeline's perspective, best-effort ("eventually
// written"), and never read back by the core.
package archive

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/models"
)

const (
	alertKeyPrefix   = "alert:"
	clusterKeyPrefix = "cluster:"
)

// Store wraps the badger database.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the archive at path. An empty path
// opens an in-memory store, which tests and ephemeral deployments use.
func Open(path string) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("archive: open %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutAlert records a synthesized alert.
func (s *Store) PutAlert(alert *models.Alert) error {
	return s.put(alertKeyPrefix+alert.ID, alert)
}

// PutCluster records a produced cluster.
func (s *Store) PutCluster(cluster *models.Cluster) error {
	return s.put(clusterKeyPrefix+cluster.ID, cluster)
}

func (s *Store) put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("archive: marshal %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("archive: write %s: %w", key, err)
	}
	logging.Debug().Str("key", key).Int("bytes", len(raw)).Msg("archived record")
	return nil
}
