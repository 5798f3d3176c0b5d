package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/simforge/simforge/logging"
	"github.com/simforge/simforge/simulation"
	"github.com/simforge/simforge/utils"
)

// databaseFilename describes the name of the history database file inside the configured directory.
const databaseFilename = "simulations.db"

// simulationsBucket describes the bucket holding one record per simulation request.
var simulationsBucket = []byte("simulations")

// Record describes one persisted simulation: the request as received, and either the assembled report or the
// classification message the request failed with.
type Record struct {
	// ID describes the unique identifier assigned to this simulation.
	ID string `json:"id"`

	// CreatedAt describes when the simulation was received.
	CreatedAt time.Time `json:"created_at"`

	// Request echoes the simulation request as received.
	Request simulation.Request `json:"request"`

	// Report describes the assembled simulation report, nil when the request failed.
	Report *simulation.Report `json:"report,omitempty"`

	// Error describes the classification message for a failed request.
	Error string `json:"error,omitempty"`
}

// Store persists simulation records in a bbolt database. It is safe for concurrent use by multiple requests.
type Store struct {
	// db describes the underlying bbolt database.
	db *bbolt.DB

	// logger describes the Store's log object
	logger *logging.Logger
}

// NewStore opens (creating if needed) the history database inside the given directory.
// Returns the Store if it succeeds, or an error if one occurs.
func NewStore(databaseDirectory string, logger *logging.Logger) (*Store, error) {
	// Ensure the directory holding the database exists.
	if err := utils.MakeDirectory(databaseDirectory); err != nil {
		return nil, err
	}

	// Open the database file.
	databasePath := filepath.Join(databaseDirectory, databaseFilename)
	db, err := bbolt.Open(databasePath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open simulation history database: %v", err)
	}

	// Create our bucket if it doesn't exist.
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(simulationsBucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: logger.NewSubLogger("module", "storage"),
	}, nil
}

// SaveRecord persists the given record, assigning it an identifier and timestamp if it does not carry them yet.
// Returns an error if one occurs.
func (s *Store) SaveRecord(record *Record) error {
	// Assign identity and receive time on first save.
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	// Encode the record.
	b, err := cbor.Marshal(record, cbor.EncOptions{})
	if err != nil {
		return err
	}

	// Write it under its identifier.
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(simulationsBucket).Put([]byte(record.ID), b)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Persisted simulation record ", record.ID)
	return nil
}

// GetRecord retrieves the record with the given identifier.
// Returns the record, or nil if no record exists under the identifier, or an error if one occurs.
func (s *Store) GetRecord(id string) (*Record, error) {
	var record *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(simulationsBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		record = &Record{}
		return cbor.Unmarshal(data, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecords retrieves up to limit records. A non-positive limit retrieves all records.
// Returns the records, or an error if one occurs.
func (s *Store) ListRecords(limit int) ([]*Record, error) {
	records := make([]*Record, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(simulationsBucket).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			record := &Record{}
			if err := cbor.Unmarshal(v, record); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
