package dto

import "time"

// BookInput carries the editable fields shared by create and update.
type BookInput struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	PublishedYear int    `json:"published_year,omitempty"`
	Path          string `json:"file_path,omitempty"`
	Format        string `json:"format,omitempty"`
}

type AddBookInput struct {
	BookInput
}

type UpdateBookInput struct {
	ID string
	BookInput
}

type RecordSessionInput struct {
	BookID    string
	SessionID string
}

type ReindexInput struct{}

type BookOutput struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description,omitempty"`
	ISBN          string    `json:"isbn,omitempty"`
	PublishedYear int       `json:"published_year,omitempty"`
	FilePath      string    `json:"file_path,omitempty"`
	Format        string    `json:"format,omitempty"`
	NotePath      string    `json:"-"`
	AddedAt       time.Time `json:"added_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastSessionID string    `json:"last_session_id,omitempty"`
}

type DeleteOutput struct {
	ID    string
	Title string
}
