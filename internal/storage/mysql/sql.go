package mysql

// Note: `text` is reserved; keep review bodies in quoted columns everywhere.

const insertReviewsPrefix = "INSERT INTO reviews\n" +
	"  (id, `type`, status, rating, public_review, private_feedback, categories, submitted_at, guest_name, listing_name, listing_id, channel)\n" +
	"VALUES "

// Use VALUES(col) for broad compatibility; COALESCE keeps old value if new is NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  `type`           = VALUES(`type`),\n" +
	"  status           = VALUES(status),\n" +
	"  rating           = VALUES(rating),\n" +
	"  public_review    = VALUES(public_review),\n" +
	"  private_feedback = COALESCE(VALUES(private_feedback), reviews.private_feedback),\n" +
	"  categories       = VALUES(categories),\n" +
	"  submitted_at     = VALUES(submitted_at),\n" +
	"  guest_name       = VALUES(guest_name),\n" +
	"  listing_name     = VALUES(listing_name),\n" +
	"  listing_id       = VALUES(listing_id),\n" +
	"  channel          = COALESCE(VALUES(channel), reviews.channel),\n" +
	"  updated_at       = CURRENT_TIMESTAMP\n"

const listReviewsSQL = `
SELECT
  id,
  ` + "`type`" + `,
  status,
  rating,
  public_review,
  private_feedback,
  categories,
  submitted_at,
  guest_name,
  listing_name,
  listing_id,
  channel
FROM reviews
ORDER BY submitted_at, id
`

const deleteSelectionSQL = `DELETE FROM review_selection`

// position preserves first-appearance order of the deduplicated set.
const insertSelectionSQL = `
INSERT INTO review_selection (review_id, position)
VALUES (?, ?)
`

const readSelectionSQL = `
SELECT review_id FROM review_selection ORDER BY position
`

const insertGoogleReviewSQL = `
INSERT IGNORE INTO google_reviews
  (listing_id, review_id, place_id, author_name, rating, ` + "`text`" + `, relative_time, profile_photo_url, published_at, language, published, imported_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const setGooglePublishedSQL = `
UPDATE google_reviews SET published = ? WHERE listing_id = ? AND review_id = ?
`

const getGoogleReviewSQL = `
SELECT listing_id, review_id, place_id, author_name, rating, ` + "`text`" + `, relative_time, profile_photo_url, published_at, language, published, imported_at
FROM google_reviews
WHERE listing_id = ? AND review_id = ?
`

const listGoogleReviewsSQL = `
SELECT listing_id, review_id, place_id, author_name, rating, ` + "`text`" + `, relative_time, profile_photo_url, published_at, language, published, imported_at
FROM google_reviews
%s
ORDER BY imported_at, review_id
`

const insertMissSQL = `
INSERT INTO sync_misses (listing_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP
`
