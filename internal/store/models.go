package store

import "time"

// Asset is a single library entry. The search engine reads the metadata
// fields only; the remaining columns belong to persistence and serving.
type Asset struct {
	ID               string     `db:"id"`
	Name             string     `db:"name"`
	Description      string     `db:"description"`
	Mime             string     `db:"mime"`
	Bytes            int64      `db:"bytes"`
	UploadedAt       time.Time  `db:"uploaded_at"`
	AIDescription    *string    `db:"ai_description"`
	AITextContent    *string    `db:"ai_text_content"`
	ViewCount        int        `db:"view_count"`
	Width            int        `db:"width"`
	Height           int        `db:"height"`
	OriginalFilename string     `db:"original_filename"`
	SHA256           string     `db:"sha256"`
	TagText          string     `db:"tag_text"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at"`
	Tags             []string   `db:"-"`
}

type AssetCreate struct {
	Name             string
	Description      string
	Tags             []string
	AIDescription    *string
	AITextContent    *string
	Width            int
	Height           int
	Bytes            int64
	Mime             string
	OriginalFilename string
	SHA256           string
}

type AssetUpdate struct {
	Name          *string
	Description   *string
	Tags          *[]string
	AIDescription *string
	AITextContent *string
}
