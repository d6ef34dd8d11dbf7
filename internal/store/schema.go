package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/catalog"
)

var defaultHeader = catalog.Header{
	Title:       "Minha Loja",
	Description: "Peça pelo WhatsApp",
	Color:       "#222222",
}

var defaultFooter = catalog.Footer{
	Title:             "Minha Loja",
	Text:              "Obrigado pela visita!",
	Whatsapp:          "5500000000000",
	Facebook:          "minhaloja",
	Instagram:         "minhaloja",
	Location:          "Brasil",
	StoreInfo:         "Minha Loja",
	CompleteStoreInfo: "Minha Loja",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS header (
        id VARCHAR(8) PRIMARY KEY,
        icon VARCHAR(255) NOT NULL DEFAULT '',
        logo VARCHAR(255) NOT NULL DEFAULT '',
        title VARCHAR(50) NOT NULL,
        description VARCHAR(300) NOT NULL,
        color CHAR(7) NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS footer (
        id VARCHAR(8) PRIMARY KEY,
        title VARCHAR(50) NOT NULL,
        text VARCHAR(500) NOT NULL,
        whatsapp CHAR(13) NOT NULL,
        facebook VARCHAR(50) NOT NULL,
        instagram VARCHAR(50) NOT NULL,
        location VARCHAR(200) NOT NULL,
        store_info VARCHAR(100) NOT NULL,
        complete_store_info VARCHAR(300) NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS propagandas (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        big_image VARCHAR(255) NOT NULL,
        small_image VARCHAR(255) NOT NULL,
        position INT NOT NULL,
        INDEX idx_propagandas_position (position)
    )`,
	`CREATE TABLE IF NOT EXISTS categories (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        name VARCHAR(30) NOT NULL UNIQUE,
        position INT NOT NULL,
        INDEX idx_categories_position (position)
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        category_id BIGINT NOT NULL,
        name VARCHAR(50) NOT NULL,
        price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
        `+"`off`"+` TINYINT UNSIGNED NOT NULL DEFAULT 0,
        installment VARCHAR(50) NOT NULL DEFAULT '',
        whatsapp CHAR(13) NOT NULL,
        message VARCHAR(500) NOT NULL,
        image VARCHAR(255) NOT NULL,
        position INT NOT NULL,
        INDEX idx_products_category (category_id),
        INDEX idx_products_position (position),
        CONSTRAINT fk_products_category FOREIGN KEY (category_id) REFERENCES categories (id)
    )`,
	`CREATE TABLE IF NOT EXISTS product_clicks (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        product_id BIGINT NOT NULL,
        clicked_at TIMESTAMP(3) NOT NULL,
        INDEX idx_product_clicks_product (product_id),
        CONSTRAINT fk_product_clicks_product FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
    )`,
	`CREATE TABLE IF NOT EXISTS admin (
        id VARCHAR(8) PRIMARY KEY,
        username_hash VARCHAR(255) NOT NULL,
        password_hash VARCHAR(255) NOT NULL,
        token VARCHAR(128) NOT NULL
    )`,
}

// EnsureSchema creates the necessary tables if they don't exist and seeds
// the header and footer singleton rows.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	h := defaultHeader
	if _, err := db.ExecContext(ctx, `INSERT INTO header (id, icon, logo, title, description, color)
        SELECT ?, '', '', ?, ?, ? FROM DUAL
        WHERE NOT EXISTS (SELECT 1 FROM header WHERE id = ?)`,
		catalog.SingletonID, h.Title, h.Description, h.Color, catalog.SingletonID); err != nil {
		return fmt.Errorf("seed header: %w", err)
	}

	f := defaultFooter
	if _, err := db.ExecContext(ctx, `INSERT INTO footer (id, title, text, whatsapp, facebook, instagram, location, store_info, complete_store_info)
        SELECT ?, ?, ?, ?, ?, ?, ?, ?, ? FROM DUAL
        WHERE NOT EXISTS (SELECT 1 FROM footer WHERE id = ?)`,
		catalog.SingletonID, f.Title, f.Text, f.Whatsapp, f.Facebook, f.Instagram, f.Location, f.StoreInfo, f.CompleteStoreInfo,
		catalog.SingletonID); err != nil {
		return fmt.Errorf("seed footer: %w", err)
	}
	return nil
}
