package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
	"github.com/Pavankona715/seo-audit-platform/pkg/fileutil"
)

/*
Responsibilities
- Persist crawled pages, engine results and final results per audit
- Track audit status transitions

Output Characteristics
- Stable key layout (audit id prefixed)
- Idempotent writes
- Overwrite-safe reruns

The production HTTP/DB-backed sink is an external collaborator; this
package provides the local implementations the standalone CLI runs on.
*/

// Sink is the persistence port the orchestrator writes through between
// pipeline stages. The core never embeds persistence inside engines.
type Sink interface {
	PersistPages(auditID, siteID string, pages []seomodel.PageData) failure.ClassifiedError
	PersistEngineResult(auditID string, result seomodel.AuditResult) failure.ClassifiedError
	PersistFinalResults(auditID string, results FinalResults) failure.ClassifiedError
	UpdateAuditStatus(auditID string, status seomodel.AuditStatus, fields map[string]any) failure.ClassifiedError
}

// BoltSink persists audits into a single bbolt database file.
type BoltSink struct {
	db           *bolt.DB
	metadataSink metadata.MetadataSink
}

// NewBoltSink opens (creating if needed) the audit database at
// dir/audits.db.
func NewBoltSink(dir string, metadataSink metadata.MetadataSink) (*BoltSink, failure.ClassifiedError) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, &StorageError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError, Path: dir}
	}
	path := filepath.Join(dir, "audits.db")
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseOpenFailure, Path: path}
	}
	return &BoltSink{db: db, metadataSink: metadataSink}, nil
}

func (s *BoltSink) Close() error {
	return s.db.Close()
}

func (s *BoltSink) PersistPages(auditID, siteID string, pages []seomodel.PageData) failure.ClassifiedError {
	type pagesRecord struct {
		AuditID string               `json:"audit_id"`
		SiteID  string               `json:"site_id"`
		Pages   []seomodel.PageData  `json:"pages"`
	}
	return s.put(bucketPages, auditID, pagesRecord{AuditID: auditID, SiteID: siteID, Pages: pages})
}

func (s *BoltSink) PersistEngineResult(auditID string, result seomodel.AuditResult) failure.ClassifiedError {
	key := fmt.Sprintf("%s/%s", auditID, result.EngineName)
	return s.put(bucketEngineResults, key, result)
}

func (s *BoltSink) PersistFinalResults(auditID string, results FinalResults) failure.ClassifiedError {
	return s.put(bucketFinalResults, auditID, results)
}

func (s *BoltSink) UpdateAuditStatus(auditID string, status seomodel.AuditStatus, fields map[string]any) failure.ClassifiedError {
	return s.put(bucketAuditStatus, auditID, statusRecord{
		AuditID: auditID,
		Status:  string(status),
		Fields:  fields,
	})
}

func (s *BoltSink) put(bucket, key string, value any) failure.ClassifiedError {
	encoded, err := json.Marshal(value)
	if err != nil {
		return s.recordError(&StorageError{Message: err.Error(), Retryable: false, Cause: ErrCauseEncodeFailure}, key)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, berr := tx.CreateBucketIfNotExists([]byte(bucket))
		if berr != nil {
			return berr
		}
		return b.Put([]byte(key), encoded)
	})
	if err != nil {
		return s.recordError(&StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, Path: s.db.Path()}, key)
	}
	return nil
}

func (s *BoltSink) recordError(storageErr *StorageError, key string) failure.ClassifiedError {
	if s.metadataSink != nil {
		s.metadataSink.RecordError(metadata.NewErrorRecord(
			"storage", "BoltSink.put", mapStorageErrorToMetadataCause(storageErr), storageErr,
			metadata.NewAttr(metadata.AttrWritePath, key),
		))
	}
	return storageErr
}

// Get helpers used by the CLI to read an audit back out.

func (s *BoltSink) AuditStatus(auditID string) (seomodel.AuditStatus, map[string]any, bool) {
	var record statusRecord
	found := s.get(bucketAuditStatus, auditID, &record)
	return seomodel.AuditStatus(record.Status), record.Fields, found
}

func (s *BoltSink) FinalResults(auditID string) (FinalResults, bool) {
	var results FinalResults
	found := s.get(bucketFinalResults, auditID, &results)
	return results, found
}

func (s *BoltSink) get(bucket, key string, out any) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err == nil {
			found = true
		}
		return nil
	})
	return found
}

// MemorySink is the in-process Sink used by tests and dry runs.
type MemorySink struct {
	mu            sync.Mutex
	Pages         map[string][]seomodel.PageData
	EngineResults map[string][]seomodel.AuditResult
	Finals        map[string]FinalResults
	Statuses      map[string][]seomodel.AuditStatus
	StatusFields  map[string]map[string]any
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		Pages:         make(map[string][]seomodel.PageData),
		EngineResults: make(map[string][]seomodel.AuditResult),
		Finals:        make(map[string]FinalResults),
		Statuses:      make(map[string][]seomodel.AuditStatus),
		StatusFields:  make(map[string]map[string]any),
	}
}

func (s *MemorySink) PersistPages(auditID, siteID string, pages []seomodel.PageData) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pages[auditID] = pages
	return nil
}

func (s *MemorySink) PersistEngineResult(auditID string, result seomodel.AuditResult) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EngineResults[auditID] = append(s.EngineResults[auditID], result)
	return nil
}

func (s *MemorySink) PersistFinalResults(auditID string, results FinalResults) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Finals[auditID] = results
	return nil
}

func (s *MemorySink) UpdateAuditStatus(auditID string, status seomodel.AuditStatus, fields map[string]any) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Statuses[auditID] = append(s.Statuses[auditID], status)
	if fields != nil {
		merged := s.StatusFields[auditID]
		if merged == nil {
			merged = make(map[string]any)
		}
		for k, v := range fields {
			merged[k] = v
		}
		s.StatusFields[auditID] = merged
	}
	return nil
}
