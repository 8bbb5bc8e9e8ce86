package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

var _ ports.FingerprintStore = (*Store)(nil)

// CheckFingerprint looks a fingerprint up by its identity pair.
func (s *Store) CheckFingerprint(ctx context.Context, contentType, primaryIdentifier string) (*domain.Fingerprint, error) {
	return s.queryFingerprint(ctx, sq.Eq{
		"content_type":       contentType,
		"primary_identifier": primaryIdentifier,
	})
}

// CheckFingerprintByHash looks any fingerprint up by content hash,
// regardless of content type.
func (s *Store) CheckFingerprintByHash(ctx context.Context, contentHash string) (*domain.Fingerprint, error) {
	return s.queryFingerprint(ctx, sq.Eq{"content_hash": contentHash})
}

// SaveFingerprint inserts the fingerprint as a single atomic statement.
// When the identity pair already exists the insert is a no-op and the
// existing row id is returned with created=false; identity fields are never
// overwritten.
func (s *Store) SaveFingerprint(ctx context.Context, fp domain.Fingerprint) (int64, bool, error) {
	metadata, err := marshalJSON(fp.PlatformMetadata)
	if err != nil {
		return 0, false, fmt.Errorf("marshal platform metadata: %w", err)
	}

	status := fp.ProcessingStatus
	if status == "" {
		status = domain.FingerprintStatusNew
	}

	res, err := s.sb.Insert("content_fingerprints").
		Columns("content_type", "primary_identifier", "url", "content_hash", "platform", "processing_status", "platform_metadata").
		Values(fp.ContentType, fp.PrimaryIdentifier, fp.URL, fp.ContentHash, fp.Platform, status, metadata).
		Suffix("ON CONFLICT(content_type, primary_identifier) DO NOTHING").
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("insert fingerprint: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}

	if affected > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("last insert id: %w", err)
		}
		return id, true, nil
	}

	existing, err := s.CheckFingerprint(ctx, fp.ContentType, fp.PrimaryIdentifier)
	if err != nil {
		return 0, false, err
	}
	if existing == nil {
		return 0, false, fmt.Errorf("fingerprint conflict but identity %s/%s not found", fp.ContentType, fp.PrimaryIdentifier)
	}
	return existing.ID, false, nil
}

// UpdateFingerprintStatus sets processing_status and bumps last_updated.
// Updating to the current status is a valid no-op.
func (s *Store) UpdateFingerprintStatus(ctx context.Context, id int64, status string) error {
	_, err := s.sb.Update("content_fingerprints").
		Set("processing_status", status).
		Set("last_updated", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": id}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update fingerprint %d status: %w", id, err)
	}
	return nil
}

func (s *Store) queryFingerprint(ctx context.Context, where sq.Eq) (*domain.Fingerprint, error) {
	row := s.sb.Select("id", "content_type", "primary_identifier", "url", "content_hash",
		"platform", "processing_status", "first_seen", "last_updated", "platform_metadata").
		From("content_fingerprints").
		Where(where).
		Limit(1).
		RunWith(s.db).
		QueryRowContext(ctx)

	var (
		fp                    domain.Fingerprint
		firstSeen, lastSeen   sql.NullString
		url, status, metadata sql.NullString
	)
	err := row.Scan(&fp.ID, &fp.ContentType, &fp.PrimaryIdentifier, &url, &fp.ContentHash,
		&fp.Platform, &status, &firstSeen, &lastSeen, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan fingerprint: %w", err)
	}

	fp.URL = url.String
	fp.ProcessingStatus = status.String
	fp.FirstSeen = parseTimestamp(firstSeen)
	fp.LastUpdated = parseTimestamp(lastSeen)
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &fp.PlatformMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal platform metadata: %w", err)
		}
	}

	return &fp, nil
}

func marshalJSON(value map[string]any) (any, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
