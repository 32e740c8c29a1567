package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"
	"time"

	"github.com/watchlistapp/watchlist-server/internal/domain"
	"github.com/watchlistapp/watchlist-server/internal/store"
)

// cachedEntryColumns is the ordered list of columns selected when reading
// entries joined to their media metadata. Must match the scan order in
// scanCachedEntry.
const cachedEntryColumns = `e.id, e.username, e.media_id, e.list_name, e.status, e.score,
	e.progress, e.repeat_count, e.started_at, e.completed_at, e.updated_at, e.created_at, e.synced_at,
	m.title_romaji, m.title_english, m.title_native,
	m.cover_image_large, m.cover_image_medium,
	m.episodes, m.format, m.genres, m.average_score, m.description`

// scanCachedEntry scans a joined entry row into a domain.CachedEntry.
// Media columns come from a LEFT JOIN and may all be NULL.
func (s *Store) scanCachedEntry(scanner interface{ Scan(dest ...any) error }) (*domain.CachedEntry, error) {
	var e domain.CachedEntry

	var (
		listName     sql.NullString
		status       sql.NullString
		score        sql.NullFloat64
		progress     sql.NullInt64
		repeatCount  sql.NullInt64
		startedAt    sql.NullString
		completedAt  sql.NullString
		updatedAt    sql.NullInt64
		createdAt    sql.NullInt64
		titleRomaji  sql.NullString
		titleEnglish sql.NullString
		titleNative  sql.NullString
		coverLarge   sql.NullString
		coverMedium  sql.NullString
		episodes     sql.NullInt64
		format       sql.NullString
		genres       sql.NullString
		averageScore sql.NullInt64
		description  sql.NullString
	)

	err := scanner.Scan(
		&e.ID,
		&e.Username,
		&e.MediaID,
		&listName,
		&status,
		&score,
		&progress,
		&repeatCount,
		&startedAt,
		&completedAt,
		&updatedAt,
		&createdAt,
		&e.SyncedAt,
		&titleRomaji,
		&titleEnglish,
		&titleNative,
		&coverLarge,
		&coverMedium,
		&episodes,
		&format,
		&genres,
		&averageScore,
		&description,
	)
	if err != nil {
		return nil, err
	}

	e.ListName = listName.String
	e.Status = domain.ListStatus(status.String)
	e.Score = score.Float64
	e.Progress = int(progress.Int64)
	e.Repeat = int(repeatCount.Int64)
	e.StartedAt = startedAt.String
	e.CompletedAt = completedAt.String
	e.UpdatedAt = updatedAt.Int64
	e.CreatedAt = createdAt.Int64
	e.TitleRomaji = titleRomaji.String
	e.TitleEnglish = titleEnglish.String
	e.TitleNative = titleNative.String
	e.CoverLarge = coverLarge.String
	e.CoverMedium = coverMedium.String
	e.Episodes = intPtr(episodes)
	e.Format = format.String
	e.AverageScore = intPtr(averageScore)
	e.Description = description.String

	if genres.Valid && genres.String != "" {
		if err := json.Unmarshal([]byte(genres.String), &e.Genres); err != nil {
			// A corrupt genres blob should not take the whole row down.
			s.logger.Warn("unparseable genres for media, returning empty list",
				"media_id", e.MediaID, "error", err)
			e.Genres = nil
		}
	}

	return &e, nil
}

// ReplaceUserEntries replaces the stored snapshot for a user with the
// given lists inside a single transaction. Entry rows for the user are
// deleted first so remote-side deletions disappear locally, then every
// entry and its media metadata is written back. Returns the number of
// entries written.
func (s *Store) ReplaceUserEntries(ctx context.Context, username string, lists []domain.List) (int, error) {
	if username == "" {
		return 0, store.ErrInvalidInput.WithCause(fmt.Errorf("empty username"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM list_entries WHERE username = ?`, username); err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}

	syncedAt := formatTime(time.Now())
	count := 0

	for _, list := range lists {
		for _, entry := range list.Entries {
			if err := entry.Validate(); err != nil {
				return 0, store.ErrInvalidInput.WithCause(err)
			}
			if err := s.insertEntry(ctx, tx, username, list.Name, entry, syncedAt); err != nil {
				return 0, fmt.Errorf("insert entry %d: %w", entry.ID, err)
			}
			if entry.Media != nil {
				if err := s.upsertMedia(ctx, tx, entry.Media); err != nil {
					return 0, fmt.Errorf("upsert media %d: %w", entry.Media.ID, err)
				}
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return count, nil
}

func (s *Store) insertEntry(ctx context.Context, tx *sql.Tx, username, listName string, e *domain.ListEntry, syncedAt string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO list_entries (
			id, username, media_id, list_name, status, score, progress, repeat_count,
			started_at, completed_at, updated_at, created_at, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			score = excluded.score,
			progress = excluded.progress,
			synced_at = excluded.synced_at`,
		e.ID,
		username,
		e.MediaID,
		nullString(listName),
		nullString(string(e.Status)),
		e.Score,
		e.Progress,
		e.Repeat,
		nullString(e.StartedAt.String()),
		nullString(e.CompletedAt.String()),
		nullInt64(e.UpdatedAt),
		nullInt64(e.CreatedAt),
		syncedAt,
	)
	return err
}

func (s *Store) upsertMedia(ctx context.Context, tx *sql.Tx, m *domain.Media) error {
	genres, err := json.Marshal(m.Genres)
	if err != nil {
		return fmt.Errorf("marshal genres: %w", err)
	}

	// The banner image comes back on every fetch but is served straight
	// from the remote payload, never from the snapshot.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO media_details (
			id, title_romaji, title_english, title_native,
			cover_image_large, cover_image_medium,
			episodes, format, status, season, season_year,
			genres, average_score, description
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title_romaji = excluded.title_romaji,
			title_english = excluded.title_english,
			title_native = excluded.title_native,
			episodes = excluded.episodes,
			average_score = excluded.average_score`,
		m.ID,
		nullString(m.Title.Romaji),
		nullString(m.Title.English),
		nullString(m.Title.Native),
		nullString(m.CoverImage.Large),
		nullString(m.CoverImage.Medium),
		nullInt64(int64(m.Episodes)),
		nullString(m.Format),
		nullString(m.Status),
		nullString(m.Season),
		nullInt64(int64(m.SeasonYear)),
		string(genres),
		nullInt64(int64(m.AverageScore)),
		nullString(m.Description),
	)
	return err
}

// EntrySummaries returns the change-detection view of a user's stored
// entries: id, status, score, progress and updated_at for every row.
func (s *Store) EntrySummaries(ctx context.Context, username string) ([]domain.EntrySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, score, progress, updated_at
		FROM list_entries WHERE username = ?`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.EntrySummary
	for rows.Next() {
		var (
			sum       domain.EntrySummary
			status    sql.NullString
			score     sql.NullFloat64
			progress  sql.NullInt64
			updatedAt sql.NullInt64
		)
		if err := rows.Scan(&sum.ID, &status, &score, &progress, &updatedAt); err != nil {
			return nil, err
		}
		sum.Status = domain.ListStatus(status.String)
		sum.Score = score.Float64
		sum.Progress = int(progress.Int64)
		sum.UpdatedAt = updatedAt.Int64
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// EntriesForUser returns the cached entries for a user joined to their
// media metadata, newest activity first. An empty or "ALL" status
// returns every entry; anything else filters on the stored status.
func (s *Store) EntriesForUser(ctx context.Context, username string, status string) ([]*domain.CachedEntry, error) {
	query := `SELECT ` + cachedEntryColumns + `
		FROM list_entries e
		LEFT JOIN media_details m ON m.id = e.media_id
		WHERE e.username = ?`
	args := []any{username}

	if status != "" && status != "ALL" {
		query += ` AND e.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY e.updated_at DESC, e.id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.CachedEntry
	for rows.Next() {
		entry, err := s.scanCachedEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
