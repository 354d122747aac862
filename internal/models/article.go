package models

import "time"

// DefaultArticleAuthor is the display name used when an article source
// carries no author.
const DefaultArticleAuthor = "Администратор"

// Article represents a published article in the directory.
type Article struct {
	ID          UUID   `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Content     string `db:"content" json:"content"`
	Author      string `db:"author" json:"author"`
	PublishDate int64  `db:"publish_date" json:"publish_date"`
}

// TableName returns the table name for Article.
func (Article) TableName() string {
	return "articles"
}

// PublishTime returns the publish date as time.Time.
func (a *Article) PublishTime() time.Time {
	return time.Unix(a.PublishDate, 0)
}
