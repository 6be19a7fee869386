// Package store persists layout records: the proportion vector of one group
// of one topology.
//
// # Backends
//
//   - [Memory]: in-process map, used by tests and the server's default mode
//   - [FileStore]: one JSON file per record under a directory
//   - [RedisStore]: JSON values under "dashgrid:layout:<topology>/<group>"
//   - [MongoStore]: one document per record, unique on (topology, group)
//   - [PostgresStore]: a single layouts table via database/sql and pgx
//   - [HTTPStore]: a remote dashgrid server's /api/layouts endpoints
//
// All backends follow the same contract: Get returns (nil, nil) for an
// absent record, Put overwrites, Delete of an absent record is not an error.
// Records are validated on Put.
//
// # Keys
//
// Records are addressed by "topology/group" ([Key]). Topology and group
// names cannot contain "/", so the key is unambiguous and different
// topologies never share a record.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// Record is one persisted proportion vector.
type Record struct {
	Topology  string            `json:"topology" bson:"topology"`
	Group     string            `json:"group" bson:"group"`
	Sizes     proportion.Vector `json:"sizes" bson:"sizes"`
	Revision  string            `json:"revision,omitempty" bson:"revision,omitempty"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// Key returns the record's "topology/group" key.
func (r *Record) Key() string { return Key(r.Topology, r.Group) }

// Validate checks the names and the proportion vector.
func (r *Record) Validate() error {
	if err := errors.ValidateTopologyName(r.Topology); err != nil {
		return err
	}
	if err := errors.ValidateGroupID(r.Group); err != nil {
		return err
	}
	return r.Sizes.Validate()
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Sizes = r.Sizes.Clone()
	return &c
}

// Key joins a topology name and group id.
func Key(topology, group string) string {
	return topology + "/" + group
}

// SplitKey is the inverse of [Key].
func SplitKey(key string) (topology, group string, err error) {
	topology, group, ok := strings.Cut(key, "/")
	if !ok || topology == "" || group == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "malformed layout key %q", key)
	}
	return topology, group, nil
}

// Store persists layout records.
type Store interface {
	// Get returns the record, or nil with no error when it does not exist.
	Get(ctx context.Context, topology, group string) (*Record, error)

	// Put validates and stores rec, replacing any previous record.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a record. Deleting an absent record is not an error.
	Delete(ctx context.Context, topology, group string) error

	// List returns every record of a topology ordered by group.
	List(ctx context.Context, topology string) ([]Record, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's connections.
	Close() error
}

// stamp validates rec and fills UpdatedAt when unset.
func stamp(rec *Record) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil record")
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// checkNames validates the addressing part of a request before it reaches
// a backend that derives paths or keys from it.
func checkNames(topology, group string) error {
	if err := errors.ValidateTopologyName(topology); err != nil {
		return err
	}
	if group == "" {
		return nil
	}
	return errors.ValidateGroupID(group)
}
