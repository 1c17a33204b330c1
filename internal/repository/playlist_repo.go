package repository

import (
	"context"

	"classroom/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, p *model.Playlist) error
	GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error)
	ListPlaylistsByClassID(ctx context.Context, classID string) ([]model.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	DeletePlaylistsByClassID(ctx context.Context, classID string) error

	AddFile(ctx context.Context, playlistID, fileID string) (int, error)
	RemoveFile(ctx context.Context, playlistID, fileID string) error
	ListPlaylistFilesByClassID(ctx context.Context, classID string) ([]model.PlaylistFile, error)
	DeletePlaylistFilesByPlaylistID(ctx context.Context, playlistID string) error
	DeletePlaylistFilesByClassID(ctx context.Context, classID string) error
}

type playlistRepo struct {
	pool *pgxpool.Pool
}

func NewPlaylistRepo(pool *pgxpool.Pool) PlaylistRepository {
	return &playlistRepo{pool: pool}
}

const playlistColumns = `id, class_id, creator_id, title, description, created_at`

func scanPlaylist(row pgx.Row, p *model.Playlist) error {
	return row.Scan(&p.ID, &p.ClassID, &p.CreatorID, &p.Title, &p.Description, &p.CreatedAt)
}

func (r *playlistRepo) CreatePlaylist(ctx context.Context, p *model.Playlist) error {
	query := `
		INSERT INTO playlists (class_id, creator_id, title, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + playlistColumns
	return scanPlaylist(r.pool.QueryRow(ctx, query, p.ClassID, p.CreatorID, p.Title, p.Description), p)
}

func (r *playlistRepo) GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error) {
	var p model.Playlist
	if err := scanPlaylist(r.pool.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id), &p); err != nil {
		if noRow(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *playlistRepo) ListPlaylistsByClassID(ctx context.Context, classID string) ([]model.Playlist, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE class_id = $1 ORDER BY created_at ASC`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := []model.Playlist{}
	for rows.Next() {
		var p model.Playlist
		if err := scanPlaylist(rows, &p); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func (r *playlistRepo) DeletePlaylist(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *playlistRepo) DeletePlaylistsByClassID(ctx context.Context, classID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM playlists WHERE class_id = $1`, classID)
	return err
}

// AddFile appends a file to the end of a playlist and returns its position.
func (r *playlistRepo) AddFile(ctx context.Context, playlistID, fileID string) (int, error) {
	query := `
		INSERT INTO playlist_files (playlist_id, file_id, position)
		SELECT $1::uuid, $2::uuid, COALESCE(MAX(position), 0) + 1 FROM playlist_files WHERE playlist_id = $1::uuid
		RETURNING position
	`
	var position int
	if err := r.pool.QueryRow(ctx, query, playlistID, fileID).Scan(&position); err != nil {
		return 0, mapDuplicate(err)
	}
	return position, nil
}

func (r *playlistRepo) RemoveFile(ctx context.Context, playlistID, fileID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM playlist_files WHERE playlist_id = $1 AND file_id = $2`, playlistID, fileID)
	if err != nil {
		return mapMissing(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPlaylistFilesByClassID joins every playlist entry of a class with its file
func (r *playlistRepo) ListPlaylistFilesByClassID(ctx context.Context, classID string) ([]model.PlaylistFile, error) {
	query := `
		SELECT pf.playlist_id, pf.position, ` + fileColumns + `
		FROM playlist_files pf
		JOIN playlists pl ON pl.id = pf.playlist_id
		JOIN files f ON f.id = pf.file_id
		WHERE pl.class_id = $1
		ORDER BY pf.playlist_id, pf.position ASC
	`
	rows, err := r.pool.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.PlaylistFile{}
	for rows.Next() {
		var pf model.PlaylistFile
		dest := append([]any{&pf.PlaylistID, &pf.Position}, fileFields(&pf.File)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		entries = append(entries, pf)
	}
	return entries, rows.Err()
}

func (r *playlistRepo) DeletePlaylistFilesByPlaylistID(ctx context.Context, playlistID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM playlist_files WHERE playlist_id = $1`, playlistID)
	return err
}

func (r *playlistRepo) DeletePlaylistFilesByClassID(ctx context.Context, classID string) error {
	query := `DELETE FROM playlist_files WHERE playlist_id IN (SELECT id FROM playlists WHERE class_id = $1)`
	_, err := r.pool.Exec(ctx, query, classID)
	return err
}
