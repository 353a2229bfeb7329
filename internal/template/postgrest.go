package template

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"
)

// postgrestRow maps a row of the templates table:
//
//	create table emailtemplates (
//	  id uuid primary key,
//	  title text not null,
//	  content text not null,
//	  image text not null default '',
//	  created_at timestamptz not null
//	);
type postgrestRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *postgrestRow) toTemplate() *Template {
	return &Template{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Image:     r.Image,
		CreatedAt: r.CreatedAt,
	}
}

// PostgRESTStore implements Store over a PostgREST (Supabase) table
type PostgRESTStore struct {
	client *postgrest.Client
	table  string
}

// NewPostgRESTStore creates a client for baseURL, e.g. https://<project>.supabase.co/rest/v1
func NewPostgRESTStore(baseURL, apiKey, table string) (*PostgRESTStore, error) {
	headers := map[string]string{}
	if apiKey != "" {
		headers["apikey"] = apiKey
		headers["Authorization"] = "Bearer " + apiKey
	}

	client := postgrest.NewClient(baseURL, "", headers)
	if client.ClientError != nil {
		return nil, unavailable("create postgrest client", client.ClientError)
	}

	return &PostgRESTStore{client: client, table: table}, nil
}

// List selects every row of the table
func (s *PostgRESTStore) List(ctx context.Context) ([]*Template, error) {
	var rows []postgrestRow
	_, err := s.client.From(s.table).
		Select("*", "", false).
		ExecuteTo(&rows)
	if err != nil {
		return nil, unavailable("list templates", err)
	}

	templates := make([]*Template, 0, len(rows))
	for i := range rows {
		templates = append(templates, rows[i].toTemplate())
	}
	return templates, nil
}

// Create inserts a row and returns its representation
func (s *PostgRESTStore) Create(ctx context.Context, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	row := postgrestRow{
		ID:        uuid.NewString(),
		Title:     f.Title,
		Content:   f.Content,
		Image:     f.Image,
		CreatedAt: time.Now().UTC(),
	}

	var results []postgrestRow
	_, err := s.client.From(s.table).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&results)
	if err != nil {
		return nil, unavailable("create template", err)
	}
	if len(results) == 0 {
		return row.toTemplate(), nil
	}

	return results[0].toTemplate(), nil
}

// UpdateByID patches title, content and image of one row
func (s *PostgRESTStore) UpdateByID(ctx context.Context, id string, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	// Ids are uuids; anything else cannot match a row
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	update := map[string]interface{}{
		"title":   f.Title,
		"content": f.Content,
		"image":   f.Image,
	}

	var results []postgrestRow
	_, err := s.client.From(s.table).
		Update(update, "representation", "").
		Eq("id", id).
		ExecuteTo(&results)
	if err != nil {
		return nil, unavailable("update template", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	return results[0].toTemplate(), nil
}

// Close is a no-op; the client holds no persistent connection
func (s *PostgRESTStore) Close() error {
	return nil
}
