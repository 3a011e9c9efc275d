// Package tables fetches the standalone rendering of every table found
// in an article and records which short file name maps to which table id.
package tables

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// MappingFile holds the {short name: table id} record inside each
// tables directory. The extractor reads it back.
const MappingFile = "table_ids.json"

// Fetcher is the capability the batch driver passes down; satisfied by
// fetcher.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// CollisionError means two distinct table ids truncated to the same
// short name. Proceeding would silently overwrite one table's content
// with another's, so the whole article is aborted instead.
type CollisionError struct {
	Short string
	A, B  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("table ids %q and %q both shorten to %q", e.A, e.B, e.Short)
}

// Result is what one article's table-fetch pass produced. Failed lists
// the table ids whose fetch failed; their entries stay in Mapping so a
// later resumed run can pick them up.
type Result struct {
	Mapping map[string]string
	Failed  []string
}

// ShortName derives the filesystem-safe key for a table id: the first
// six hex characters of its MD5 digest, same as the historical corpus
// layout on disk.
func ShortName(tableID string) string {
	sum := md5.Sum([]byte(tableID))
	return hex.EncodeToString(sum[:])[:6]
}

// Mapping derives short names for all ids, failing on a collision
// before anything touches the network.
func Mapping(tableIDs []string) (map[string]string, error) {
	mapping := make(map[string]string, len(tableIDs))
	for _, id := range tableIDs {
		short := ShortName(id)
		if prev, ok := mapping[short]; ok && prev != id {
			return nil, &CollisionError{Short: short, A: prev, B: id}
		}
		mapping[short] = id
	}
	return mapping, nil
}

// FetchAll downloads each table page into dir as {short}.html via the
// shared fetcher, then writes the mapping file. A single failed table
// does not stop the others, and the mapping file is written even after
// partial failures so extraction can proceed with what succeeded.
func FetchAll(ctx context.Context, f Fetcher, dir string, tableIDs []string, urlFor func(tableID string) string, log *slog.Logger) (*Result, error) {
	mapping, err := Mapping(tableIDs)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tables directory: %w", err)
	}

	result := &Result{Mapping: mapping}
	for _, id := range tableIDs {
		dest := filepath.Join(dir, ShortName(id)+".html")
		if err := f.Fetch(ctx, urlFor(id), dest); err != nil {
			log.Warn("failed to fetch table", "table_id", id, "error", err)
			result.Failed = append(result.Failed, id)
		}
	}

	if err := WriteMapping(dir, mapping); err != nil {
		return nil, err
	}
	return result, nil
}

// WriteMapping persists the mapping file, overwriting any previous one.
func WriteMapping(dir string, mapping map[string]string) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal table id mapping: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MappingFile), data, 0o644); err != nil {
		return fmt.Errorf("write table id mapping: %w", err)
	}
	return nil
}

// ReadMapping loads the mapping file written by a previous FetchAll.
func ReadMapping(dir string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, MappingFile))
	if err != nil {
		return nil, fmt.Errorf("read table id mapping: %w", err)
	}
	mapping := map[string]string{}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse table id mapping: %w", err)
	}
	return mapping, nil
}
