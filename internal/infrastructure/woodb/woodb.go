// Package woodb reads product records straight out of a live WooCommerce
// MySQL database, as an alternative to parsing a dump or CSV export.
package woodb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/catalogbridge/reconciler/config"
	"github.com/catalogbridge/reconciler/internal/domain"
)

// Open connects to the WooCommerce database and verifies the connection.
func Open(cfg config.WooDBConfig) (*sql.DB, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Database == "" {
		return nil, fmt.Errorf("%w: woodb host, username and database are required", domain.ErrSourceUnavailable)
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.Username, cfg.Password, cfg.Host, port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", domain.ErrSourceUnavailable, err)
	}

	return db, nil
}

// Source reads published WooCommerce products over a live connection.
type Source struct {
	db    *sql.DB
	table string
}

// New creates a WooCommerce database source over an open connection.
func New(db *sql.DB, table string) *Source {
	if table == "" {
		table = "wp_posts"
	}
	return &Source{db: db, table: table}
}

// Name returns the source identity.
func (s *Source) Name() domain.SourceID {
	return domain.SourceWoo
}

// Records queries published products. Column aliases line up with the
// normalizer's WooCommerce candidate names, so rows from the live database
// and rows from a dump normalize identically.
func (s *Source) Records(ctx context.Context) ([]*domain.RawRecord, error) {
	query := fmt.Sprintf(`
		SELECT post_name, post_title, post_content, post_excerpt
		FROM %s
		WHERE post_type = 'product' AND post_status = 'publish'
		ORDER BY ID`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", domain.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var records []*domain.RawRecord
	for rows.Next() {
		var slug, title, content, excerpt sql.NullString
		if err := rows.Scan(&slug, &title, &content, &excerpt); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		records = append(records, &domain.RawRecord{
			Source: domain.SourceWoo,
			Fields: map[string]string{
				"post_name":         slug.String,
				"post_title":        title.String,
				"post_content":      content.String,
				"short_description": excerpt.String,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading product rows: %w", err)
	}

	return records, nil
}
