// Package journal records every filesystem decision the reconciler makes as
// JSON session files, including dry-run decisions, so operators can audit
// what happened (or would have happened) after the fact.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OperationType string

const (
	OpRename    OperationType = "rename"
	OpMove      OperationType = "move"
	OpCreateDir OperationType = "create_dir"
	OpRemoveDir OperationType = "remove_dir"
)

// Operation is a single journal record. DryRun marks decisions that were
// reported but not executed.
type Operation struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	SourcePath string        `json:"source_path,omitempty"`
	DestPath   string        `json:"dest_path,omitempty"`
	Success    bool          `json:"success"`
	DryRun     bool          `json:"dry_run,omitempty"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	SessionID     string    `json:"session_id"`
	Trigger       string    `json:"trigger"`
	StartedAt     time.Time `json:"started_at"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
	DryRunOps     int       `json:"dry_run_operations"`
}

type Session struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []Operation     `json:"operations"`
}

// Journal accumulates operations for the current session and persists them
// on Flush. A disabled journal accepts records and drops them.
type Journal struct {
	mu      sync.Mutex
	enabled bool
	dir     string
	session *Session
}

// New creates a journal writing session files under dir. When dir is empty
// the default location under the user config dir is used. Old sessions
// beyond retentionDays are removed eagerly.
func New(enabled bool, dir string, retentionDays int) (*Journal, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".renamarr", "journal")
	}
	j := &Journal{enabled: enabled, dir: dir}
	if enabled {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
		if err := j.cleanupOldSessions(retentionDays); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to clean up old journal files: %v\n", err)
		}
	}
	return j, nil
}

// StartSession begins a new session; trigger names what initiated it
// ("event", "sweep", "bulk-sweep").
func (j *Journal) StartSession(trigger string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.enabled {
		return
	}
	j.session = &Session{
		Metadata: SessionMetadata{
			SessionID: uuid.NewString(),
			Trigger:   trigger,
			StartedAt: time.Now(),
		},
	}
}

// Record appends an operation to the current session.
func (j *Journal) Record(opType OperationType, sourcePath, destPath string, success, dryRun bool, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.enabled || j.session == nil {
		return
	}
	op := Operation{
		ID:         fmt.Sprintf("%s_%d", j.session.Metadata.SessionID, len(j.session.Operations)),
		Timestamp:  time.Now(),
		Type:       opType,
		SourcePath: sourcePath,
		DestPath:   destPath,
		Success:    success,
		DryRun:     dryRun,
	}
	if err != nil {
		op.Error = err.Error()
	}
	j.session.Operations = append(j.session.Operations, op)
}

// Flush writes the current session to disk and resets it. Sessions with no
// operations are dropped.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.enabled || j.session == nil {
		return nil
	}
	session := j.session
	j.session = nil
	if len(session.Operations) == 0 {
		return nil
	}

	for _, op := range session.Operations {
		session.Metadata.TotalOps++
		switch {
		case op.DryRun:
			session.Metadata.DryRunOps++
		case op.Success:
			session.Metadata.SuccessfulOps++
		default:
			session.Metadata.FailedOps++
		}
	}

	name := fmt.Sprintf("%s_%s.json", session.Metadata.StartedAt.Format("2006-01-02_150405"), session.Metadata.SessionID[:8])
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(j.dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write journal file: %w", err)
	}
	return nil
}

// ReadSessions returns up to limit most recent sessions, newest first.
func (j *Journal) ReadSessions(limit int) ([]*Session, error) {
	files, err := filepath.Glob(filepath.Join(j.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	sessions := make([]*Session, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		var session Session
		if err := json.Unmarshal(data, &session); err != nil {
			// Skip corrupted files.
			continue
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

func (j *Journal) cleanupOldSessions(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(j.dir, "*.json"))
	if err != nil {
		return err
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to remove old journal file %s: %v\n", file, err)
			}
		}
	}
	return nil
}
