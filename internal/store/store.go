package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")
var ErrDuplicate = errors.New("duplicate asset")

const assetColumns = "id, name, description, mime, bytes, uploaded_at, ai_description, ai_text_content, view_count, width, height, original_filename, sha256, tag_text, created_at, updated_at, deleted_at"

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) CreateAsset(ctx context.Context, in AssetCreate) (*Asset, error) {
	tags := NormalizeTags(in.Tags)
	tagText := TagText(tags)
	id := uuid.NewString()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `INSERT INTO asset (id, name, description, mime, bytes, uploaded_at, ai_description, ai_text_content, width, height, original_filename, sha256, tag_text)
	VALUES (?, ?, ?, ?, ?, NOW(), ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		id, in.Name, in.Description, in.Mime, in.Bytes,
		in.AIDescription, in.AITextContent,
		in.Width, in.Height, in.OriginalFilename, in.SHA256, tagText,
	)
	if err != nil {
		if isDuplicate(err) {
			existing, getErr := s.getAssetByHash(ctx, tx, in.SHA256)
			if getErr == nil {
				return existing, ErrDuplicate
			}
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if err := s.replaceTagsTx(ctx, tx, id, tags, tagText); err != nil {
		return nil, err
	}

	asset, err := s.getAssetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *Store) getAssetByHash(ctx context.Context, tx *sqlx.Tx, sha string) (*Asset, error) {
	return s.fetchAsset(ctx, tx, "sha256 = ?", sha)
}

func (s *Store) getAssetByID(ctx context.Context, tx *sqlx.Tx, id string) (*Asset, error) {
	return s.fetchAsset(ctx, tx, "id = ?", id)
}

func (s *Store) fetchAsset(ctx context.Context, tx *sqlx.Tx, where string, arg any) (*Asset, error) {
	query := "SELECT " + assetColumns + " FROM asset WHERE " + where
	var a Asset
	var err error
	if tx != nil {
		err = tx.GetContext(ctx, &a, query, arg)
	} else {
		err = s.db.GetContext(ctx, &a, query, arg)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, tx, []*Asset{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetAsset(ctx context.Context, id string, includeDeleted bool) (*Asset, error) {
	where := "id = ?"
	if !includeDeleted {
		where += " AND deleted_at IS NULL"
	}
	return s.fetchAsset(ctx, nil, where, id)
}

// ListLibrary materializes the full non-deleted asset set with tags attached.
// This snapshot is what the search engine runs over.
func (s *Store) ListLibrary(ctx context.Context) ([]Asset, error) {
	query := "SELECT " + assetColumns + " FROM asset WHERE deleted_at IS NULL ORDER BY uploaded_at DESC, id"
	var rows []Asset
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	assets := make([]*Asset, len(rows))
	for i := range rows {
		assets[i] = &rows[i]
	}
	if err := s.attachTags(ctx, nil, assets); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) UpdateAsset(ctx context.Context, id string, upd AssetUpdate) (*Asset, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	setParts := []string{}
	args := []any{}
	if upd.Name != nil {
		setParts = append(setParts, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		setParts = append(setParts, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.AIDescription != nil {
		setParts = append(setParts, "ai_description = ?")
		args = append(args, *upd.AIDescription)
	}
	if upd.AITextContent != nil {
		setParts = append(setParts, "ai_text_content = ?")
		args = append(args, *upd.AITextContent)
	}

	var tags []string
	if upd.Tags != nil {
		tags = NormalizeTags(*upd.Tags)
		setParts = append(setParts, "tag_text = ?")
		args = append(args, TagText(tags))
	}

	if len(setParts) > 0 {
		setParts = append(setParts, "updated_at = NOW()")
		query := "UPDATE asset SET " + strings.Join(setParts, ", ") + " WHERE id = ? AND deleted_at IS NULL"
		args = append(args, id)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			return nil, ErrNotFound
		}
	}

	if upd.Tags != nil {
		if err := s.replaceTagsTx(ctx, tx, id, tags, TagText(tags)); err != nil {
			return nil, err
		}
	}

	asset, err := s.getAssetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE asset SET deleted_at = NOW(), updated_at = NOW() WHERE id = ? AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordView bumps the view counter that feeds the relevance scorer's
// popularity bonus.
func (s *Store) RecordView(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE asset SET view_count = view_count + 1 WHERE id = ? AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) replaceTagsTx(ctx context.Context, tx *sqlx.Tx, assetID string, tags []string, tagText string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM asset_tag WHERE asset_id = ?", assetID); err != nil {
		return err
	}

	if len(tags) == 0 {
		_, err := tx.ExecContext(ctx, "UPDATE asset SET tag_text = ?, updated_at = NOW() WHERE id = ?", tagText, assetID)
		return err
	}

	for _, t := range tags {
		res, err := tx.ExecContext(ctx, "INSERT INTO tag (name) VALUES (?) ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)", t)
		if err != nil {
			return err
		}
		tagID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT IGNORE INTO asset_tag (asset_id, tag_id) VALUES (?, ?)", assetID, tagID); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, "UPDATE asset SET tag_text = ?, updated_at = NOW() WHERE id = ?", tagText, assetID)
	return err
}

func (s *Store) attachTags(ctx context.Context, tx *sqlx.Tx, assets []*Asset) error {
	if len(assets) == 0 {
		return nil
	}
	ids := make([]string, len(assets))
	index := make(map[string]*Asset)
	for i, a := range assets {
		ids[i] = a.ID
		index[a.ID] = a
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = strings.TrimSuffix(placeholders, ",")
	query := "SELECT at.asset_id, t.name FROM asset_tag at JOIN tag t ON t.id = at.tag_id WHERE at.asset_id IN (" + placeholders + ") ORDER BY t.name"
	rows, err := (func() (*sqlx.Rows, error) {
		if tx != nil {
			return tx.QueryxContext(ctx, query, toAny(ids)...)
		}
		return s.db.QueryxContext(ctx, query, toAny(ids)...)
	})()
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var assetID string
		var name string
		if err := rows.Scan(&assetID, &name); err != nil {
			return err
		}
		index[assetID].Tags = append(index[assetID].Tags, name)
	}
	return rows.Err()
}

func toAny[T comparable](vals []T) []any {
	res := make([]any, len(vals))
	for i, v := range vals {
		res[i] = v
	}
	return res
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate") || strings.Contains(strings.ToLower(err.Error()), "unique")
}

func (s *Store) ListTags(ctx context.Context, prefix string, page, pageSize int) ([]string, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	where := ""
	args := []any{}
	if prefix != "" {
		where = "WHERE name LIKE ?"
		args = append(args, prefix+"%")
	}

	countQuery := "SELECT COUNT(*) FROM tag " + where
	var total int
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT name FROM tag " + where + " ORDER BY name LIMIT ? OFFSET ?"
	argsWithPaging := append(append([]any{}, args...), pageSize, offset)
	var tags []string
	if err := s.db.SelectContext(ctx, &tags, query, argsWithPaging...); err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}
