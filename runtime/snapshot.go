package runtime

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Snapshots copy a live store between processes without sharing the sqlite
// file: every entity is serialized through its JSON row form and the set is
// wrapped in a CBOR envelope.

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("runtime: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type snapshotEnvelope struct {
	Version int               `cbor:"1,keyasint"`
	Rows    map[string]string `cbor:"2,keyasint"`
}

const snapshotVersion = 1

// Snapshot serializes every live entity to CBOR bytes.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	all := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		all = append(all, e)
	}
	s.mu.RUnlock()

	// Deterministic row order for stable snapshots of equal stores.
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	env := snapshotEnvelope{
		Version: snapshotVersion,
		Rows:    make(map[string]string, len(all)),
	}
	for _, e := range all {
		row, err := e.ToJSON()
		if err != nil {
			return nil, err
		}
		env.Rows[e.ID] = row
	}
	return cborEncMode.Marshal(&env)
}

// RestoreSnapshot loads entities from snapshot bytes into the store,
// replacing same-id entities and persisting write-through.
func (s *Store) RestoreSnapshot(data []byte) error {
	var env snapshotEnvelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if env.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", env.Version)
	}

	for id, row := range env.Rows {
		e, err := entityFromJSON(id, row)
		if err != nil {
			return err
		}
		s.register(e)
		if err := s.save(e); err != nil {
			return err
		}
	}
	return nil
}
