package db

import (
	"database/sql"
	"time"

	"github.com/notaryapp/backend/internal/models"
	"github.com/notaryapp/backend/internal/uuid"
)

// =====================================================
// Article Operations
// =====================================================

const articleColumns = `id, title, content, author, publish_date`

// CreateArticle creates a new article. Author defaults to the fixed
// display name, publish date to now.
func (r *Repository) CreateArticle(a *models.Article) error {
	if a.ID.IsZero() {
		a.ID = models.UUID(uuid.New())
	}
	if a.Author == "" {
		a.Author = models.DefaultArticleAuthor
	}
	if a.PublishDate == 0 {
		a.PublishDate = time.Now().Unix()
	}

	query := `
	INSERT INTO articles (id, title, content, author, publish_date)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.q.Exec(query, a.ID, a.Title, a.Content, a.Author, a.PublishDate)
	return err
}

// GetArticle retrieves an article by ID.
func (r *Repository) GetArticle(id string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`
	row, err := r.queryRow(query, id)
	if err != nil {
		return nil, err
	}
	var a models.Article
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.PublishDate); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListArticles returns all articles, newest first.
func (r *Repository) ListArticles() ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY publish_date DESC`
	rows, err := r.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.PublishDate); err != nil {
			return nil, err
		}
		articles = append(articles, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

// CountArticles returns the total number of articles.
func (r *Repository) CountArticles() (int, error) {
	var count int
	err := r.q.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// UpdateArticle updates an existing article.
func (r *Repository) UpdateArticle(a *models.Article) error {
	query := `UPDATE articles SET title = ?, content = ?, author = ?, publish_date = ? WHERE id = ?`
	result, err := r.q.Exec(query, a.Title, a.Content, a.Author, a.PublishDate, a.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteArticle permanently removes an article.
func (r *Repository) DeleteArticle(id string) error {
	result, err := r.q.Exec("DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
