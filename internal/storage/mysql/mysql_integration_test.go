//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"flex_reviews/internal/domain"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=flexreviews",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "flexreviews")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- the test ----------
func TestRepo_MySQL_ReviewLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	r1 := domain.Review{
		ID:           7453,
		Type:         domain.TypeGuestToHost,
		Status:       domain.StatusPublished,
		Rating:       pfloat(9),
		PublicReview: "Shane and family are wonderful!",
		ReviewCategory: []domain.CategoryRating{
			{Category: "cleanliness", Rating: pfloat(10)},
			{Category: "communication", Rating: nil},
		},
		SubmittedAt: time.Date(2020, time.August, 21, 22, 45, 14, 0, time.UTC),
		GuestName:   "Shane Finkelstein",
		ListingName: "2B N1 A - 29 Shoreditch Heights",
		ListingID:   253093,
		Channel:     "Airbnb",
	}
	r2 := domain.Review{
		ID:              7460,
		Type:            domain.TypeGuestToHost,
		Status:          domain.StatusPending,
		Rating:          nil, // guest left no score
		PublicReview:    "wifi kept dropping",
		PrivateFeedback: pstr("router needs replacing"),
		ReviewCategory:  []domain.CategoryRating{},
		SubmittedAt:     time.Date(2024, time.February, 3, 9, 15, 0, 0, time.UTC),
		GuestName:       "Tom Oduya",
		ListingName:     "1B E2 C - 14 Canary Wharf Lofts",
		ListingID:       112233,
	}
	if err := repo.UpsertReviews(ctx, []domain.Review{r1, r2}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	// upsert is idempotent and refreshes mutable fields
	r1.Status = domain.StatusArchived
	if err := repo.UpsertReviews(ctx, []domain.Review{r1}); err != nil {
		t.Fatalf("UpsertReviews (second pass): %v", err)
	}

	got, err := repo.ListReviews(ctx)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(got))
	}
	// ordered by submitted_at ascending
	if got[0].ID != 7453 || got[1].ID != 7460 {
		t.Fatalf("unexpected order: %d, %d", got[0].ID, got[1].ID)
	}
	if got[0].Status != domain.StatusArchived {
		t.Fatalf("upsert did not refresh status: %q", got[0].Status)
	}
	if got[0].Rating == nil || *got[0].Rating != 9 {
		t.Fatalf("rating round-trip failed: %+v", got[0].Rating)
	}
	if len(got[0].ReviewCategory) != 2 {
		t.Fatalf("categories round-trip failed: %+v", got[0].ReviewCategory)
	}
	if got[0].ReviewCategory[1].Rating != nil {
		t.Fatalf("nil sub-rating round-trip failed: %+v", got[0].ReviewCategory[1])
	}
	if !got[0].SubmittedAt.Equal(r1.SubmittedAt) {
		t.Fatalf("timestamp round-trip failed: %v vs %v", got[0].SubmittedAt, r1.SubmittedAt)
	}
	if got[1].Rating != nil {
		t.Fatalf("expected nil rating, got %v", *got[1].Rating)
	}
	if got[1].PrivateFeedback == nil || *got[1].PrivateFeedback != "router needs replacing" {
		t.Fatalf("private feedback round-trip failed: %+v", got[1].PrivateFeedback)
	}
}

func TestRepo_MySQL_SelectionAndGoogleImports(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// selection preserves order and replaces wholesale
	if err := repo.ReplaceSelection(ctx, []int64{7460, 7453, 7455}); err != nil {
		t.Fatalf("ReplaceSelection: %v", err)
	}
	ids, err := repo.Selection(ctx)
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	if len(ids) != 3 || ids[0] != 7460 || ids[1] != 7453 || ids[2] != 7455 {
		t.Fatalf("selection order lost: %v", ids)
	}
	if err := repo.ReplaceSelection(ctx, []int64{7453}); err != nil {
		t.Fatalf("ReplaceSelection (replace): %v", err)
	}
	ids, err = repo.Selection(ctx)
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	if len(ids) != 1 || ids[0] != 7453 {
		t.Fatalf("selection not replaced: %v", ids)
	}

	// google imports dedupe on (listing, review id)
	published := time.Date(2024, time.May, 29, 10, 0, 0, 0, time.UTC)
	batch := []domain.StoredGoogleReview{
		{
			GoogleReview: domain.GoogleReview{
				ID:          "maria-lopez-1717000000",
				AuthorName:  "Maria Lopez",
				Rating:      5,
				Text:        "Spotless and central",
				PublishedAt: &published,
			},
			ListingID:  253093,
			PlaceID:    "place-x",
			ImportedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	if err := repo.ImportGoogleReviews(ctx, batch); err != nil {
		t.Fatalf("ImportGoogleReviews: %v", err)
	}
	if err := repo.ImportGoogleReviews(ctx, batch); err != nil {
		t.Fatalf("ImportGoogleReviews (repeat): %v", err)
	}
	listing := int64(253093)
	stored, err := repo.ListGoogleReviews(ctx, &listing)
	if err != nil {
		t.Fatalf("ListGoogleReviews: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored review after dedupe, got %d", len(stored))
	}
	if stored[0].Published {
		t.Fatalf("imports must start unpublished")
	}
	if stored[0].PublishedAt == nil || !stored[0].PublishedAt.Equal(published) {
		t.Fatalf("published-at round-trip failed: %+v", stored[0].PublishedAt)
	}

	// publish flips the flag and returns the updated row
	upd, err := repo.SetGooglePublished(ctx, 253093, "maria-lopez-1717000000", true)
	if err != nil {
		t.Fatalf("SetGooglePublished: %v", err)
	}
	if !upd.Published {
		t.Fatalf("expected published=true: %+v", upd)
	}

	// unknown review maps to the domain sentinel
	if _, err := repo.SetGooglePublished(ctx, 253093, "no-such-id", true); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// misses upsert on (listing, reason)
	if err := repo.LogMiss(ctx, 253093, 404, "hostaway reviews"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, 253093, 404, "hostaway reviews"); err != nil {
		t.Fatalf("LogMiss (repeat): %v", err)
	}
}
