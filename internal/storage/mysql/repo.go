package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"flex_reviews/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func strOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*12) // 12 params per row
	for _, rv := range rs {
		cats, err := json.Marshal(rv.ReviewCategory)
		if err != nil {
			return fmt.Errorf("marshal categories for review %d: %w", rv.ID, err)
		}
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.ID,
			rv.Type,
			rv.Status,
			valF64(rv.Rating),
			rv.PublicReview,
			valStr(rv.PrivateFeedback),
			string(cats),
			rv.SubmittedAt.UTC(),
			rv.GuestName,
			rv.ListingName,
			rv.ListingID,
			strOrNil(rv.Channel),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var (
			rating  sql.NullFloat64
			private sql.NullString
			catsRaw []byte
			channel sql.NullString
		)
		if err := rows.Scan(
			&rv.ID,
			&rv.Type,
			&rv.Status,
			&rating,
			&rv.PublicReview,
			&private,
			&catsRaw,
			&rv.SubmittedAt,
			&rv.GuestName,
			&rv.ListingName,
			&rv.ListingID,
			&channel,
		); err != nil {
			return nil, err
		}
		if rating.Valid {
			f := rating.Float64
			rv.Rating = &f
		}
		if private.Valid {
			s := private.String
			rv.PrivateFeedback = &s
		}
		if channel.Valid {
			rv.Channel = channel.String
		}
		rv.ReviewCategory = []domain.CategoryRating{}
		if len(catsRaw) > 0 {
			if err := json.Unmarshal(catsRaw, &rv.ReviewCategory); err != nil {
				return nil, fmt.Errorf("unmarshal categories for review %d: %w", rv.ID, err)
			}
		}
		rv.SubmittedAt = rv.SubmittedAt.UTC()
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceSelection swaps the whole selected-id set in one transaction so a
// concurrent reader never observes a half-written selection.
func (r *Repo) ReplaceSelection(ctx context.Context, ids []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteSelectionSQL); err != nil {
		return err
	}
	for pos, id := range ids {
		if _, err := tx.ExecContext(ctx, insertSelectionSQL, id, pos); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) Selection(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, readSelectionSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ImportGoogleReviews inserts new rows and leaves already-imported ones
// untouched (dedupe on the (listing_id, review_id) key).
func (r *Repo) ImportGoogleReviews(ctx context.Context, rs []domain.StoredGoogleReview) error {
	for _, rv := range rs {
		var publishedAt any
		if rv.PublishedAt != nil {
			publishedAt = rv.PublishedAt.UTC()
		}
		if _, err := r.db.ExecContext(ctx, insertGoogleReviewSQL,
			rv.ListingID,
			rv.ID,
			rv.PlaceID,
			rv.AuthorName,
			rv.Rating,
			rv.Text,
			strOrNil(rv.RelativeTimeDescription),
			strOrNil(rv.ProfilePhotoURL),
			publishedAt,
			strOrNil(rv.Language),
			rv.Published,
			rv.ImportedAt.UTC(),
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) SetGooglePublished(ctx context.Context, listingID int64, reviewID string, published bool) (domain.StoredGoogleReview, error) {
	if _, err := r.db.ExecContext(ctx, setGooglePublishedSQL, published, listingID, reviewID); err != nil {
		return domain.StoredGoogleReview{}, err
	}
	row := r.db.QueryRowContext(ctx, getGoogleReviewSQL, listingID, reviewID)
	rv, err := scanGoogleReview(row)
	if err == sql.ErrNoRows {
		return domain.StoredGoogleReview{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) ListGoogleReviews(ctx context.Context, listingID *int64) ([]domain.StoredGoogleReview, error) {
	where := ""
	var args []any
	if listingID != nil {
		where = "WHERE listing_id = ?"
		args = append(args, *listingID)
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(listGoogleReviewsSQL, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StoredGoogleReview
	for rows.Next() {
		rv, err := scanGoogleReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) LogMiss(ctx context.Context, listingID int64, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, listingID, status, reason)
	return err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanGoogleReview(row rowScanner) (domain.StoredGoogleReview, error) {
	var rv domain.StoredGoogleReview
	var (
		relative    sql.NullString
		photo       sql.NullString
		publishedAt sql.NullTime
		language    sql.NullString
	)
	if err := row.Scan(
		&rv.ListingID,
		&rv.ID,
		&rv.PlaceID,
		&rv.AuthorName,
		&rv.Rating,
		&rv.Text,
		&relative,
		&photo,
		&publishedAt,
		&language,
		&rv.Published,
		&rv.ImportedAt,
	); err != nil {
		return domain.StoredGoogleReview{}, err
	}
	if relative.Valid {
		rv.RelativeTimeDescription = relative.String
	}
	if photo.Valid {
		rv.ProfilePhotoURL = photo.String
	}
	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		rv.PublishedAt = &t
	}
	if language.Valid {
		rv.Language = language.String
	}
	rv.ImportedAt = rv.ImportedAt.UTC()
	return rv, nil
}
