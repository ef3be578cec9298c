// Package domain defines the persistence models for movies, message links,
// and likes. These types are mapped with GORM and form the engagement state
// of the movie-night bot.
//
// Invariants are expressed as native schema constraints rather than
// application checks: natural primary keys deduplicate movies and message
// links, a composite unique index deduplicates likes, and foreign keys keep
// likes and links attached to known movies. The repo layer relies on these
// constraints to make concurrent duplicate writes collapse to one winner.
package domain

import "time"

// Movie is one tracked title, keyed by its canonical IMDb id (e.g. "tt0133093").
//
// Fields:
//   - IMDBID: natural primary key; re-insertion of a known id is a no-op.
//   - Title / Year: display metadata from the first successful resolution.
//     Year is a string because OMDb reports ranges for series ("2010–2014")
//     and may omit it entirely.
//   - Watched: excludes the movie from future suggestions once set.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Movies are never deleted in normal operation.
type Movie struct {
	IMDBID    string    `json:"imdb_id"        gorm:"column:imdb_id;type:varchar(16);primaryKey"`
	Title     string    `json:"title"          gorm:"type:varchar(255);not null"`
	Year      string    `json:"year,omitempty" gorm:"type:varchar(16)"`
	Watched   bool      `json:"watched"        gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Movie.
func (Movie) TableName() string { return "movies" }

// MessageLink ties one chat message to the movie it referenced or announced.
// A message maps to at most one movie (natural primary key), while a movie
// may be linked from many messages (shared twice, or suggested and
// re-announced). Links are never updated or deleted.
type MessageLink struct {
	MessageID string    `json:"message_id" gorm:"column:message_id;type:varchar(32);primaryKey"`
	IMDBID    string    `json:"imdb_id"    gorm:"column:imdb_id;type:varchar(16);not null;index"`
	CreatedAt time.Time `json:"created_at"`

	// Movie is the linked title. The FK guarantees links never dangle.
	Movie Movie `json:"-" gorm:"foreignKey:IMDBID;references:IMDBID;constraint:OnUpdate:CASCADE"`
}

// TableName returns the database table name for MessageLink.
func (MessageLink) TableName() string { return "message_links" }

// Like records that a user endorses a movie. A user can like a given movie
// at most once, enforced by the (imdb_id, user_id) unique index; the repo
// layer turns the resulting conflict into an "already liked" outcome.
type Like struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	IMDBID    string    `json:"imdb_id" gorm:"column:imdb_id;type:varchar(16);not null;index;uniqueIndex:ux_likes_movie_user"`
	UserID    string    `json:"user_id" gorm:"type:varchar(32);not null;uniqueIndex:ux_likes_movie_user"`
	CreatedAt time.Time `json:"created_at"`

	// Movie is the endorsed title. The FK guarantees likes never dangle.
	Movie Movie `json:"-" gorm:"foreignKey:IMDBID;references:IMDBID;constraint:OnUpdate:CASCADE"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string { return "likes" }
