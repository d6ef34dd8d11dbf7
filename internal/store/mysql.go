package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"storefront/internal/catalog"
	"storefront/internal/mask"
)

// MySQL is the production catalog.Store. Every statement it runs is a
// fixed string from this package; user input only ever travels as arguments.
type MySQL struct {
	db *sql.DB
}

var _ catalog.Store = (*MySQL)(nil)

// NewMySQL wraps an open pool.
func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) Close() error { return s.db.Close() }

type fieldSQL struct {
	get string
	set string
}

// fieldStatements maps each editable field to its read and write statements.
var fieldStatements = map[catalog.Field]fieldSQL{
	catalog.HeaderIcon:        {"SELECT icon FROM header WHERE id = ?", "UPDATE header SET icon = ? WHERE id = ?"},
	catalog.HeaderLogo:        {"SELECT logo FROM header WHERE id = ?", "UPDATE header SET logo = ? WHERE id = ?"},
	catalog.HeaderTitle:       {"SELECT title FROM header WHERE id = ?", "UPDATE header SET title = ? WHERE id = ?"},
	catalog.HeaderDescription: {"SELECT description FROM header WHERE id = ?", "UPDATE header SET description = ? WHERE id = ?"},
	catalog.HeaderColor:       {"SELECT color FROM header WHERE id = ?", "UPDATE header SET color = ? WHERE id = ?"},

	catalog.FooterTitle:             {"SELECT title FROM footer WHERE id = ?", "UPDATE footer SET title = ? WHERE id = ?"},
	catalog.FooterText:              {"SELECT text FROM footer WHERE id = ?", "UPDATE footer SET text = ? WHERE id = ?"},
	catalog.FooterWhatsapp:          {"SELECT whatsapp FROM footer WHERE id = ?", "UPDATE footer SET whatsapp = ? WHERE id = ?"},
	catalog.FooterFacebook:          {"SELECT facebook FROM footer WHERE id = ?", "UPDATE footer SET facebook = ? WHERE id = ?"},
	catalog.FooterInstagram:         {"SELECT instagram FROM footer WHERE id = ?", "UPDATE footer SET instagram = ? WHERE id = ?"},
	catalog.FooterLocation:          {"SELECT location FROM footer WHERE id = ?", "UPDATE footer SET location = ? WHERE id = ?"},
	catalog.FooterStoreInfo:         {"SELECT store_info FROM footer WHERE id = ?", "UPDATE footer SET store_info = ? WHERE id = ?"},
	catalog.FooterCompleteStoreInfo: {"SELECT complete_store_info FROM footer WHERE id = ?", "UPDATE footer SET complete_store_info = ? WHERE id = ?"},

	catalog.PropagandaBigImage:   {"SELECT big_image FROM propagandas WHERE id = ?", "UPDATE propagandas SET big_image = ? WHERE id = ?"},
	catalog.PropagandaSmallImage: {"SELECT small_image FROM propagandas WHERE id = ?", "UPDATE propagandas SET small_image = ? WHERE id = ?"},

	catalog.CategoryName: {"SELECT name FROM categories WHERE id = ?", "UPDATE categories SET name = ? WHERE id = ?"},

	catalog.ProductCategory:    {"SELECT CAST(category_id AS CHAR) FROM products WHERE id = ?", "UPDATE products SET category_id = ? WHERE id = ?"},
	catalog.ProductName:        {"SELECT name FROM products WHERE id = ?", "UPDATE products SET name = ? WHERE id = ?"},
	catalog.ProductPrice:       {"SELECT CAST(price AS CHAR) FROM products WHERE id = ?", "UPDATE products SET price = ? WHERE id = ?"},
	catalog.ProductOff:         {"SELECT CAST(`off` AS CHAR) FROM products WHERE id = ?", "UPDATE products SET `off` = ? WHERE id = ?"},
	catalog.ProductInstallment: {"SELECT installment FROM products WHERE id = ?", "UPDATE products SET installment = ? WHERE id = ?"},
	catalog.ProductWhatsapp:    {"SELECT whatsapp FROM products WHERE id = ?", "UPDATE products SET whatsapp = ? WHERE id = ?"},
	catalog.ProductMessage:     {"SELECT message FROM products WHERE id = ?", "UPDATE products SET message = ? WHERE id = ?"},
	catalog.ProductImage:       {"SELECT image FROM products WHERE id = ?", "UPDATE products SET image = ? WHERE id = ?"},
}

type orderSQL struct {
	ids         string
	lockIDs     string
	nextPos     string
	setPosition string
}

var orderStatements = map[catalog.Table]orderSQL{
	catalog.TablePropagandas: {
		ids:         "SELECT id FROM propagandas ORDER BY position, id",
		lockIDs:     "SELECT id FROM propagandas ORDER BY position, id FOR UPDATE",
		nextPos:     "SELECT COALESCE(MAX(position) + 1, 0) FROM propagandas FOR UPDATE",
		setPosition: "UPDATE propagandas SET position = ? WHERE id = ?",
	},
	catalog.TableCategories: {
		ids:         "SELECT id FROM categories ORDER BY position, id",
		lockIDs:     "SELECT id FROM categories ORDER BY position, id FOR UPDATE",
		nextPos:     "SELECT COALESCE(MAX(position) + 1, 0) FROM categories FOR UPDATE",
		setPosition: "UPDATE categories SET position = ? WHERE id = ?",
	},
	catalog.TableProducts: {
		ids:         "SELECT id FROM products ORDER BY position, id",
		lockIDs:     "SELECT id FROM products ORDER BY position, id FOR UPDATE",
		nextPos:     "SELECT COALESCE(MAX(position) + 1, 0) FROM products FOR UPDATE",
		setPosition: "UPDATE products SET position = ? WHERE id = ?",
	},
}

const productColumns = "p.id, p.category_id, p.name, CAST(p.price AS CHAR), p.`off`, p.installment, p.whatsapp, p.message, p.image, p.position, " +
	"(SELECT COUNT(*) FROM product_clicks c WHERE c.product_id = p.id)"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.Off, &p.Installment, &p.Whatsapp, &p.Message, &p.Image, &p.Position, &p.Clicks)
	return p, err
}

func (s *MySQL) Propagandas(ctx context.Context) ([]catalog.Propaganda, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, big_image, small_image, position FROM propagandas ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("query propagandas: %w", err)
	}
	defer rows.Close()
	var out []catalog.Propaganda
	for rows.Next() {
		var p catalog.Propaganda
		if err := rows.Scan(&p.ID, &p.BigImage, &p.SmallImage, &p.Position); err != nil {
			return nil, fmt.Errorf("scan propaganda: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *MySQL) Propaganda(ctx context.Context, id int64) (catalog.Propaganda, error) {
	return propaganda(ctx, s.db, id, false)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func propaganda(ctx context.Context, q querier, id int64, lock bool) (catalog.Propaganda, error) {
	query := "SELECT id, big_image, small_image, position FROM propagandas WHERE id = ?"
	if lock {
		query += " FOR UPDATE"
	}
	var p catalog.Propaganda
	if err := q.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.BigImage, &p.SmallImage, &p.Position); err != nil {
		return catalog.Propaganda{}, scanErr("propaganda", err)
	}
	return p, nil
}

func (s *MySQL) InsertPropaganda(ctx context.Context, bigImage, smallImage string) (catalog.Propaganda, error) {
	p := catalog.Propaganda{BigImage: bigImage, SmallImage: smallImage}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, catalog.TablePropagandas)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "INSERT INTO propagandas (big_image, small_image, position) VALUES (?, ?, ?)", bigImage, smallImage, pos)
		if err != nil {
			return fmt.Errorf("insert propaganda: %w", err)
		}
		p.ID, _ = res.LastInsertId()
		p.Position = pos
		return nil
	})
	return p, err
}

func (s *MySQL) DeletePropaganda(ctx context.Context, id int64) (catalog.Propaganda, error) {
	var p catalog.Propaganda
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if p, err = propaganda(ctx, tx, id, true); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM propagandas WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete propaganda: %w", err)
		}
		return renumber(ctx, tx, catalog.TablePropagandas)
	})
	return p, err
}

func (s *MySQL) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, position FROM categories ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Position); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *MySQL) Category(ctx context.Context, id int64) (catalog.Category, error) {
	var c catalog.Category
	row := s.db.QueryRowContext(ctx, "SELECT id, name, position FROM categories WHERE id = ?", id)
	if err := row.Scan(&c.ID, &c.Name, &c.Position); err != nil {
		return catalog.Category{}, scanErr("category", err)
	}
	return c, nil
}

func (s *MySQL) CategoryByName(ctx context.Context, name string) (catalog.Category, error) {
	var c catalog.Category
	row := s.db.QueryRowContext(ctx, "SELECT id, name, position FROM categories WHERE name = ?", name)
	if err := row.Scan(&c.ID, &c.Name, &c.Position); err != nil {
		return catalog.Category{}, scanErr("category", err)
	}
	return c, nil
}

func (s *MySQL) InsertCategory(ctx context.Context, name string) (catalog.Category, error) {
	c := catalog.Category{Name: name}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, catalog.TableCategories)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "INSERT INTO categories (name, position) VALUES (?, ?)", name, pos)
		if isDuplicate(err) {
			return fmt.Errorf("insert category %q: %w", name, catalog.ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		c.ID, _ = res.LastInsertId()
		c.Position = pos
		return nil
	})
	return c, err
}

// DeleteCategory removes the category's products, then the category, in one transaction.
func (s *MySQL) DeleteCategory(ctx context.Context, id int64) (catalog.Category, []catalog.Product, error) {
	var (
		c       catalog.Category
		removed []catalog.Product
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, "SELECT id, name, position FROM categories WHERE id = ? FOR UPDATE", id)
		if err := row.Scan(&c.ID, &c.Name, &c.Position); err != nil {
			return scanErr("category", err)
		}
		rows, err := tx.QueryContext(ctx, "SELECT "+productColumns+" FROM products p WHERE p.category_id = ? ORDER BY p.position FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("query category products: %w", err)
		}
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("scan product: %w", err)
			}
			removed = append(removed, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE category_id = ?", id); err != nil {
			return fmt.Errorf("delete category products: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if err := renumber(ctx, tx, catalog.TableProducts); err != nil {
			return err
		}
		return renumber(ctx, tx, catalog.TableCategories)
	})
	if err != nil {
		return catalog.Category{}, nil, err
	}
	return c, removed, nil
}

func (s *MySQL) Products(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products p ORDER BY p.position, p.id")
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()
	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *MySQL) Product(ctx context.Context, id int64) (catalog.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id = ?", id))
	if err != nil {
		return catalog.Product{}, scanErr("product", err)
	}
	return p, nil
}

func (s *MySQL) InsertProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, catalog.TableProducts)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "INSERT INTO products (category_id, name, price, `off`, installment, whatsapp, message, image, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			p.CategoryID, p.Name, p.Price, p.Off, p.Installment, p.Whatsapp, p.Message, p.Image, pos)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		p.ID, _ = res.LastInsertId()
		p.Position = pos
		p.Clicks = 0
		return nil
	})
	return p, err
}

func (s *MySQL) DeleteProduct(ctx context.Context, id int64) (catalog.Product, error) {
	var p catalog.Product
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		p, err = scanProduct(tx.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id = ? FOR UPDATE", id))
		if err != nil {
			return scanErr("product", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return renumber(ctx, tx, catalog.TableProducts)
	})
	return p, err
}

func (s *MySQL) RecordClick(ctx context.Context, productID int64, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, "INSERT INTO product_clicks (product_id, clicked_at) VALUES (?, ?)", productID, at.UTC()); err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	return nil
}

func (s *MySQL) Clicks(ctx context.Context, productID int64) ([]catalog.Click, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT product_id, clicked_at FROM product_clicks WHERE product_id = ? ORDER BY clicked_at, id", productID)
	if err != nil {
		return nil, fmt.Errorf("query clicks: %w", err)
	}
	defer rows.Close()
	var out []catalog.Click
	for rows.Next() {
		var c catalog.Click
		if err := rows.Scan(&c.ProductID, &c.At); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *MySQL) FieldValue(ctx context.Context, f catalog.Field, id int64) (string, error) {
	stmt, ok := fieldStatements[f]
	if !ok {
		return "", fmt.Errorf("unknown field %s", f)
	}
	var v string
	if err := s.db.QueryRowContext(ctx, stmt.get, rowKey(f, id)).Scan(&v); err != nil {
		return "", scanErr(f.String(), err)
	}
	return v, nil
}

func (s *MySQL) UpdateField(ctx context.Context, f catalog.Field, id int64, value string) error {
	stmt, ok := fieldStatements[f]
	if !ok {
		return fmt.Errorf("unknown field %s", f)
	}
	_, err := s.db.ExecContext(ctx, stmt.set, value, rowKey(f, id))
	if isDuplicate(err) {
		return fmt.Errorf("update %s: %w", f, catalog.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", f, err)
	}
	return nil
}

func rowKey(f catalog.Field, id int64) any {
	if f.Table.Singleton() {
		return catalog.SingletonID
	}
	return id
}

func (s *MySQL) IDs(ctx context.Context, t catalog.Table) ([]int64, error) {
	return ids(ctx, s.db, t)
}

func ids(ctx context.Context, q querier, t catalog.Table) ([]int64, error) {
	stmt, ok := orderStatements[t]
	if !ok {
		return nil, fmt.Errorf("table %s has no positions", t)
	}
	return scanIDs(ctx, q, t, stmt.ids)
}

func scanIDs(ctx context.Context, q querier, t catalog.Table, query string) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s ids: %w", t, err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", t, err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Reorder writes every position of the table in one transaction. The
// table's rows stay locked from the id-set check to the commit.
func (s *MySQL) Reorder(ctx context.Context, t catalog.Table, order []int64) error {
	stmt, ok := orderStatements[t]
	if !ok {
		return fmt.Errorf("table %s has no positions", t)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanIDs(ctx, tx, t, stmt.lockIDs)
		if err != nil {
			return err
		}
		if err := mask.IDSet(t, current, order); err != nil {
			return err
		}
		for pos, id := range order {
			if _, err := tx.ExecContext(ctx, stmt.setPosition, pos, id); err != nil {
				return fmt.Errorf("reorder %s: %w", t, err)
			}
		}
		return nil
	})
}

func nextPosition(ctx context.Context, tx *sql.Tx, t catalog.Table) (int, error) {
	var pos int
	if err := tx.QueryRowContext(ctx, orderStatements[t].nextPos).Scan(&pos); err != nil {
		return 0, fmt.Errorf("next %s position: %w", t, err)
	}
	return pos, nil
}

// renumber closes gaps left by deletes so positions stay 0..N-1.
func renumber(ctx context.Context, tx *sql.Tx, t catalog.Table) error {
	order, err := ids(ctx, tx, t)
	if err != nil {
		return err
	}
	stmt := orderStatements[t].setPosition
	for pos, id := range order {
		if _, err := tx.ExecContext(ctx, stmt, pos, id); err != nil {
			return fmt.Errorf("renumber %s: %w", t, err)
		}
	}
	return nil
}

func (s *MySQL) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const errDupEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}
