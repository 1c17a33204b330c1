package model

import "time"

// Playlist is an ordered collection of class files
type Playlist struct {
	ID          string         `db:"id" json:"id"`
	ClassID     string         `db:"class_id" json:"class_id"`
	CreatorID   string         `db:"creator_id" json:"creator_id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Files       []PlaylistFile `json:"files"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// PlaylistFile is a file at a position within a playlist
type PlaylistFile struct {
	PlaylistID string `db:"playlist_id" json:"playlist_id"`
	Position   int    `db:"position" json:"position"`
	File
}
