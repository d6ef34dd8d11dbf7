package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/catalog"
)

// Header returns the single header row.
func (s *MySQL) Header(ctx context.Context) (catalog.Header, error) {
	var h catalog.Header
	row := s.db.QueryRowContext(ctx, "SELECT icon, logo, title, description, color FROM header WHERE id = ?", catalog.SingletonID)
	if err := row.Scan(&h.Icon, &h.Logo, &h.Title, &h.Description, &h.Color); err != nil {
		return catalog.Header{}, scanErr("header", err)
	}
	return h, nil
}

// Footer returns the single footer row.
func (s *MySQL) Footer(ctx context.Context) (catalog.Footer, error) {
	var f catalog.Footer
	row := s.db.QueryRowContext(ctx, `SELECT title, text, whatsapp, facebook, instagram, location, store_info, complete_store_info
        FROM footer WHERE id = ?`, catalog.SingletonID)
	if err := row.Scan(&f.Title, &f.Text, &f.Whatsapp, &f.Facebook, &f.Instagram, &f.Location, &f.StoreInfo, &f.CompleteStoreInfo); err != nil {
		return catalog.Footer{}, scanErr("footer", err)
	}
	return f, nil
}

// Credential returns the admin row, or catalog.ErrNotFound before one was set.
func (s *MySQL) Credential(ctx context.Context) (catalog.Credential, error) {
	var c catalog.Credential
	row := s.db.QueryRowContext(ctx, "SELECT username_hash, password_hash, token FROM admin WHERE id = ?", catalog.SingletonID)
	if err := row.Scan(&c.UsernameHash, &c.PasswordHash, &c.Token); err != nil {
		return catalog.Credential{}, scanErr("admin", err)
	}
	return c, nil
}

// SaveCredential creates or replaces the admin row.
func (s *MySQL) SaveCredential(ctx context.Context, c catalog.Credential) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO admin (id, username_hash, password_hash, token) VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE username_hash = VALUES(username_hash), password_hash = VALUES(password_hash), token = VALUES(token)`,
		catalog.SingletonID, c.UsernameHash, c.PasswordHash, c.Token)
	if err != nil {
		return fmt.Errorf("save admin: %w", err)
	}
	return nil
}

func scanErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrNotFound
	}
	return fmt.Errorf("scan %s: %w", what, err)
}
