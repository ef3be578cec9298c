package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kinoclub/movienight/internal/repo"
	"github.com/kinoclub/movienight/internal/services"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newTestRouter mounts the handlers on a bare engine, without the full
// middleware stack; handler behavior is what is under test here.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)
	h := New(db, &services.SuggestService{DB: db})

	r := gin.New()
	r.GET("/movies", h.ListMovies)
	r.GET("/movies/:id", h.GetMovie)
	r.GET("/suggestions", h.PreviewSuggestions)
	return r, db
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedMovie(t *testing.T, db *gorm.DB, imdbID, title string, likers ...string) {
	t.Helper()
	ctx := context.Background()
	if _, err := repo.UpsertMovie(ctx, db, imdbID, title, "1999"); err != nil {
		t.Fatalf("seed movie: %v", err)
	}
	for _, u := range likers {
		if _, err := repo.AddLike(ctx, db, imdbID, u); err != nil {
			t.Fatalf("seed like: %v", err)
		}
	}
}

func TestListMovies_EmptyStore(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doGet(t, r, "/movies")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ListMoviesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Movies) != 0 || resp.Pagination.Total != 0 {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestListMovies_TalliesAndFilter(t *testing.T) {
	r, db := newTestRouter(t)
	seedMovie(t, db, "tt0000001", "Liked Twice", "A", "B")
	seedMovie(t, db, "tt0000002", "Unliked")
	if _, err := repo.SetWatched(context.Background(), db, "tt0000002", true); err != nil {
		t.Fatalf("mark: %v", err)
	}

	w := doGet(t, r, "/movies?watched=false")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ListMoviesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Movies) != 1 || resp.Movies[0].IMDBID != "tt0000001" {
		t.Fatalf("filter failed: %+v", resp.Movies)
	}
	if resp.Movies[0].Likes != 2 {
		t.Fatalf("tally missing: %+v", resp.Movies[0])
	}
}

func TestListMovies_BadWatchedParam(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doGet(t, r, "/movies?watched=maybe")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrCodeBadRequest {
		t.Fatalf("wrong error code: %+v", resp)
	}
}

func TestListMovies_Pagination(t *testing.T) {
	r, db := newTestRouter(t)
	for i := 0; i < 5; i++ {
		seedMovie(t, db, fmt.Sprintf("tt000010%d", i), fmt.Sprintf("Movie %d", i))
	}

	w := doGet(t, r, "/movies?page=2&page_size=2")
	var resp ListMoviesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Movies) != 2 {
		t.Fatalf("wrong page size: %d", len(resp.Movies))
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 2 || p.Total != 5 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("wrong pagination metadata: %+v", p)
	}
}

func TestGetMovie_DetailWithMessages(t *testing.T) {
	r, db := newTestRouter(t)
	seedMovie(t, db, "tt0133093", "The Matrix", "A")
	ctx := context.Background()
	for _, m := range []string{"msg-1", "msg-2"} {
		if err := repo.LinkMessage(ctx, db, m, "tt0133093"); err != nil {
			t.Fatalf("link: %v", err)
		}
	}

	w := doGet(t, r, "/movies/tt0133093")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var d MovieDetail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.IMDBID != "tt0133093" || d.Likes != 1 || len(d.Messages) != 2 {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestGetMovie_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doGet(t, r, "/movies/tt9999999")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetMovie_BadID(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doGet(t, r, "/movies/not-an-id")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
