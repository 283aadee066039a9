package runtime

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the shared object space: a map of live entities backed by an
// optional sqlite database. All dispatch reads and writes go through it.
//
// The store provides no transaction discipline. Concurrent call trees that
// mutate the same attribute race, last write wins; callers must serialize
// conflicting mutations externally. The per-entity lock protects map
// integrity only.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*Entity

	db     *sql.DB // nil when persistence is disabled
	logger *slog.Logger
}

// NewStore creates an in-memory store with no persistence.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		entities: make(map[string]*Entity),
		logger:   logger,
	}
}

// OpenStore creates a store write-through backed by the sqlite database at
// dbPath, creating the schema on first use.
func OpenStore(dbPath string, logger *slog.Logger) (*Store, error) {
	s := NewStore(logger)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Mirror concurrent access tolerance for multiple daemon processes.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		data JSON NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	s.db = db
	return s, nil
}

// Close flushes all live entities and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.SaveAll(); err != nil {
		s.logger.Warn("flush on close", "error", err)
	}
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Contract operations
// ---------------------------------------------------------------------------

// Create instantiates an object of the given class, initializing attrs, and
// returns its id. Attributes declared by the class chain but not supplied
// start nil. Fails with ErrNotFound when the class does not exist.
func (s *Store) Create(classID string, attrs map[string]Value) (string, error) {
	class, err := s.Entity(classID)
	if err != nil {
		return "", err
	}
	if !class.IsClass() {
		return "", fmt.Errorf("%s is not a class: %w", classID, ErrNotFound)
	}

	e := &Entity{
		ID:    s.generateID(classID),
		Kind:  KindObject,
		Class: classID,
		Attrs: make(map[string]Value),
	}
	for _, name := range s.declaredAttrs(class) {
		e.Attrs[name] = NilValue()
	}
	for name, v := range attrs {
		e.Attrs[name] = v
	}

	s.register(e)
	if err := s.save(e); err != nil {
		return "", err
	}
	return e.ID, nil
}

// Get reads one attribute. On a miss the class chain is consulted for a
// default; with no default defined the read fails with ErrAttributeMissing.
func (s *Store) Get(id, attr string) (Value, error) {
	e, err := s.Entity(id)
	if err != nil {
		return NilValue(), err
	}
	if v, ok := e.GetAttr(attr); ok {
		return v, nil
	}

	// Class-chain defaults.
	classID := e.Class
	if e.IsClass() {
		classID = e.Superclass
	}
	for classID != "" {
		class, err := s.Entity(classID)
		if err != nil {
			break
		}
		if v, ok := class.GetAttr(attr); ok {
			return v, nil
		}
		classID = class.Superclass
	}
	return NilValue(), fmt.Errorf("%s.%s: %w", id, attr, ErrAttributeMissing)
}

// Set writes one attribute, write-through to the database.
func (s *Store) Set(id, attr string, v Value) error {
	e, err := s.Entity(id)
	if err != nil {
		return err
	}
	e.SetAttr(attr, v)
	return s.save(e)
}

// ClassOf returns the id of the entity's class.
func (s *Store) ClassOf(id string) (string, error) {
	e, err := s.Entity(id)
	if err != nil {
		return "", err
	}
	return e.Class, nil
}

// Entity returns the live record for id, loading it from the database if
// needed. Fails with ErrNotFound.
func (s *Store) Entity(id string) (*Entity, error) {
	s.mu.RLock()
	e := s.entities[id]
	s.mu.RUnlock()
	if e != nil {
		return e, nil
	}

	if s.db != nil {
		var data string
		err := s.db.QueryRow("SELECT data FROM entities WHERE id = ?", id).Scan(&data)
		if err == nil {
			loaded, perr := entityFromJSON(id, data)
			if perr != nil {
				return nil, perr
			}
			s.register(loaded)
			return loaded, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("querying entity: %w", err)
		}
	}
	return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Delete removes an entity from the space and the database. This is the only
// reclamation primitive: discarded intermediates accumulate until deleted.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	delete(s.entities, id)
	s.mu.Unlock()

	if s.db != nil {
		if _, err := s.db.Exec("DELETE FROM entities WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting entity: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Class registration
// ---------------------------------------------------------------------------

// DefineClass registers a class entity under its own name. The superclass
// may be "" for the root. Selectors map selector names to code refs; nil is
// an empty table. Attr names listed in declared become per-instance
// attributes initialized to nil on Create.
func (s *Store) DefineClass(name, superclass string, selectors map[string]string, declared []string) *Entity {
	e := &Entity{
		ID:         name,
		Kind:       KindClass,
		Class:      "Class",
		Superclass: superclass,
		Selectors:  selectors,
		Attrs:      make(map[string]Value),
	}
	if len(declared) > 0 {
		elems := make([]Value, len(declared))
		for i, n := range declared {
			elems[i] = TextValue(n)
		}
		e.Attrs[attrDeclared] = ListValue(elems...)
	}
	s.register(e)
	if err := s.save(e); err != nil {
		s.logger.Warn("persisting class", "class", name, "error", err)
	}
	return e
}

// attrDeclared is the class attribute listing per-instance attribute names.
const attrDeclared = "_declared"

// declaredAttrs collects the declared attribute names over the superclass
// chain, superclass-first.
func (s *Store) declaredAttrs(class *Entity) []string {
	var chain []*Entity
	for c := class; c != nil; {
		chain = append(chain, c)
		if c.Superclass == "" {
			break
		}
		next, err := s.Entity(c.Superclass)
		if err != nil {
			break
		}
		c = next
	}

	var names []string
	for i := len(chain) - 1; i >= 0; i-- {
		if v, ok := chain[i].GetAttr(attrDeclared); ok && v.Type == TypeList {
			for _, n := range v.ListVal {
				names = append(names, n.TextVal)
			}
		}
	}
	return names
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

func (s *Store) register(e *Entity) {
	s.mu.Lock()
	s.entities[e.ID] = e
	s.mu.Unlock()
}

func (s *Store) save(e *Entity) error {
	if s.db == nil {
		return nil
	}
	data, err := e.ToJSON()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO entities (id, data) VALUES (?, json(?))",
		e.ID, data,
	)
	if err != nil {
		return fmt.Errorf("saving entity %s: %w", e.ID, err)
	}
	return nil
}

// SaveAll persists every live entity.
func (s *Store) SaveAll() error {
	s.mu.RLock()
	all := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		all = append(all, e)
	}
	s.mu.RUnlock()

	for _, e := range all {
		if err := s.save(e); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll brings every persisted entity into the object space.
func (s *Store) LoadAll() error {
	if s.db == nil {
		return nil
	}
	rows, err := s.db.Query("SELECT id, data FROM entities")
	if err != nil {
		return fmt.Errorf("querying all entities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("scanning entity: %w", err)
		}
		e, err := entityFromJSON(id, data)
		if err != nil {
			s.logger.Warn("skipping unreadable entity", "id", id, "error", err)
			continue
		}
		s.register(e)
	}
	return rows.Err()
}

// FindByClass returns the ids of every persisted instance of a class.
func (s *Store) FindByClass(classID string) ([]string, error) {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		var ids []string
		for id, e := range s.entities {
			if e.Class == classID {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	rows, err := s.db.Query(
		"SELECT id FROM entities WHERE json_extract(data, '$.class') = ?", classID)
	if err != nil {
		return nil, fmt.Errorf("querying by class: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// generateID builds a stable unique object id prefixed with the class name.
func (s *Store) generateID(classID string) string {
	prefix := strings.ToLower(strings.ReplaceAll(classID, "::", "_"))
	return prefix + "_" + uuid.New().String()
}
