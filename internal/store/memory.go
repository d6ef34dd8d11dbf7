package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/mask"
)

// Memory is the in-process store used in dev mode and tests. Rows of
// orderable tables are kept in position order, so position == index.
type Memory struct {
	mu          sync.Mutex
	header      catalog.Header
	footer      catalog.Footer
	propagandas []catalog.Propaganda
	categories  []catalog.Category
	products    []catalog.Product
	clicks      []catalog.Click
	credential  catalog.Credential
	nextID      int64
}

var _ catalog.Store = (*Memory)(nil)

// NewMemory returns a store seeded with the same singleton rows the schema bootstrap writes.
func NewMemory() *Memory {
	return &Memory{
		header: defaultHeader,
		footer: defaultFooter,
		nextID: 1,
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Header(context.Context) (catalog.Header, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.header, nil
}

func (m *Memory) Footer(context.Context) (catalog.Footer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.footer, nil
}

// Propagandas returns a copy of the banners in carousel order.
func (m *Memory) Propagandas(context.Context) ([]catalog.Propaganda, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.Propaganda, len(m.propagandas))
	copy(out, m.propagandas)
	return out, nil
}

func (m *Memory) Propaganda(_ context.Context, id int64) (catalog.Propaganda, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.propagandaIndex(id)
	if i < 0 {
		return catalog.Propaganda{}, catalog.ErrNotFound
	}
	return m.propagandas[i], nil
}

func (m *Memory) InsertPropaganda(_ context.Context, bigImage, smallImage string) (catalog.Propaganda, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := catalog.Propaganda{ID: m.id(), BigImage: bigImage, SmallImage: smallImage, Position: len(m.propagandas)}
	m.propagandas = append(m.propagandas, p)
	return p, nil
}

func (m *Memory) DeletePropaganda(_ context.Context, id int64) (catalog.Propaganda, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.propagandaIndex(id)
	if i < 0 {
		return catalog.Propaganda{}, catalog.ErrNotFound
	}
	p := m.propagandas[i]
	m.propagandas = append(m.propagandas[:i], m.propagandas[i+1:]...)
	m.renumber()
	return p, nil
}

func (m *Memory) Categories(context.Context) ([]catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

func (m *Memory) Category(_ context.Context, id int64) (catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.categoryIndex(id)
	if i < 0 {
		return catalog.Category{}, catalog.ErrNotFound
	}
	return m.categories[i], nil
}

// CategoryByName matches names case-insensitively, like the MySQL default collation.
func (m *Memory) CategoryByName(_ context.Context, name string) (catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return catalog.Category{}, catalog.ErrNotFound
}

func (m *Memory) InsertCategory(_ context.Context, name string) (catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			return catalog.Category{}, fmt.Errorf("insert category %q: %w", name, catalog.ErrDuplicate)
		}
	}
	c := catalog.Category{ID: m.id(), Name: name, Position: len(m.categories)}
	m.categories = append(m.categories, c)
	return c, nil
}

// DeleteCategory removes the category and every product that belongs to it.
func (m *Memory) DeleteCategory(_ context.Context, id int64) (catalog.Category, []catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.categoryIndex(id)
	if i < 0 {
		return catalog.Category{}, nil, catalog.ErrNotFound
	}
	var removed []catalog.Product
	kept := m.products[:0]
	for _, p := range m.products {
		if p.CategoryID == id {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	m.products = kept
	c := m.categories[i]
	m.categories = append(m.categories[:i], m.categories[i+1:]...)
	m.renumber()
	return c, removed, nil
}

func (m *Memory) Products(context.Context) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.Product, len(m.products))
	for i, p := range m.products {
		p.Clicks = m.clickCount(p.ID)
		out[i] = p
	}
	return out, nil
}

func (m *Memory) Product(_ context.Context, id int64) (catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.productIndex(id)
	if i < 0 {
		return catalog.Product{}, catalog.ErrNotFound
	}
	p := m.products[i]
	p.Clicks = m.clickCount(id)
	return p, nil
}

func (m *Memory) InsertProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.categoryIndex(p.CategoryID) < 0 {
		return catalog.Product{}, fmt.Errorf("insert product: category %d does not exist", p.CategoryID)
	}
	p.ID = m.id()
	p.Position = len(m.products)
	p.Clicks = 0
	m.products = append(m.products, p)
	return p, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id int64) (catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.productIndex(id)
	if i < 0 {
		return catalog.Product{}, catalog.ErrNotFound
	}
	p := m.products[i]
	m.products = append(m.products[:i], m.products[i+1:]...)
	kept := m.clicks[:0]
	for _, c := range m.clicks {
		if c.ProductID != id {
			kept = append(kept, c)
		}
	}
	m.clicks = kept
	m.renumber()
	return p, nil
}

func (m *Memory) RecordClick(_ context.Context, productID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.productIndex(productID) < 0 {
		return catalog.ErrNotFound
	}
	m.clicks = append(m.clicks, catalog.Click{ProductID: productID, At: at})
	return nil
}

func (m *Memory) Clicks(_ context.Context, productID int64) ([]catalog.Click, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []catalog.Click
	for _, c := range m.clicks {
		if c.ProductID == productID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) FieldValue(_ context.Context, f catalog.Field, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	get, _, err := m.field(f, id)
	if err != nil {
		return "", err
	}
	return get(), nil
}

func (m *Memory) UpdateField(_ context.Context, f catalog.Field, id int64, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, set, err := m.field(f, id)
	if err != nil {
		return err
	}
	return set(value)
}

// field resolves accessors for one editable column of one row.
func (m *Memory) field(f catalog.Field, id int64) (func() string, func(string) error, error) {
	str := func(p *string) (func() string, func(string) error, error) {
		return func() string { return *p }, func(v string) error { *p = v; return nil }, nil
	}
	switch f.Table {
	case catalog.TableHeader:
		switch f {
		case catalog.HeaderIcon:
			return str(&m.header.Icon)
		case catalog.HeaderLogo:
			return str(&m.header.Logo)
		case catalog.HeaderTitle:
			return str(&m.header.Title)
		case catalog.HeaderDescription:
			return str(&m.header.Description)
		case catalog.HeaderColor:
			return str(&m.header.Color)
		}
	case catalog.TableFooter:
		switch f {
		case catalog.FooterTitle:
			return str(&m.footer.Title)
		case catalog.FooterText:
			return str(&m.footer.Text)
		case catalog.FooterWhatsapp:
			return str(&m.footer.Whatsapp)
		case catalog.FooterFacebook:
			return str(&m.footer.Facebook)
		case catalog.FooterInstagram:
			return str(&m.footer.Instagram)
		case catalog.FooterLocation:
			return str(&m.footer.Location)
		case catalog.FooterStoreInfo:
			return str(&m.footer.StoreInfo)
		case catalog.FooterCompleteStoreInfo:
			return str(&m.footer.CompleteStoreInfo)
		}
	case catalog.TablePropagandas:
		i := m.propagandaIndex(id)
		if i < 0 {
			return nil, nil, catalog.ErrNotFound
		}
		p := &m.propagandas[i]
		switch f {
		case catalog.PropagandaBigImage:
			return str(&p.BigImage)
		case catalog.PropagandaSmallImage:
			return str(&p.SmallImage)
		}
	case catalog.TableCategories:
		i := m.categoryIndex(id)
		if i < 0 {
			return nil, nil, catalog.ErrNotFound
		}
		if f == catalog.CategoryName {
			c := &m.categories[i]
			return func() string { return c.Name },
				func(v string) error {
					for _, other := range m.categories {
						if other.ID != c.ID && strings.EqualFold(other.Name, v) {
							return fmt.Errorf("rename category %q: %w", v, catalog.ErrDuplicate)
						}
					}
					c.Name = v
					return nil
				}, nil
		}
	case catalog.TableProducts:
		i := m.productIndex(id)
		if i < 0 {
			return nil, nil, catalog.ErrNotFound
		}
		p := &m.products[i]
		switch f {
		case catalog.ProductCategory:
			return func() string { return strconv.FormatInt(p.CategoryID, 10) },
				func(v string) error {
					n, err := strconv.ParseInt(v, 10, 64)
					if err != nil {
						return fmt.Errorf("products.category: %w", err)
					}
					if m.categoryIndex(n) < 0 {
						return fmt.Errorf("products.category: category %d does not exist", n)
					}
					p.CategoryID = n
					return nil
				}, nil
		case catalog.ProductOff:
			return func() string { return strconv.Itoa(p.Off) },
				func(v string) error {
					n, err := strconv.Atoi(v)
					if err != nil {
						return fmt.Errorf("products.off: %w", err)
					}
					p.Off = n
					return nil
				}, nil
		case catalog.ProductName:
			return str(&p.Name)
		case catalog.ProductPrice:
			return str(&p.Price)
		case catalog.ProductInstallment:
			return str(&p.Installment)
		case catalog.ProductWhatsapp:
			return str(&p.Whatsapp)
		case catalog.ProductMessage:
			return str(&p.Message)
		case catalog.ProductImage:
			return str(&p.Image)
		}
	}
	return nil, nil, fmt.Errorf("unknown field %s", f)
}

func (m *Memory) IDs(_ context.Context, t catalog.Table) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tableIDs(t)
}

func (m *Memory) tableIDs(t catalog.Table) ([]int64, error) {
	var out []int64
	switch t {
	case catalog.TablePropagandas:
		for _, p := range m.propagandas {
			out = append(out, p.ID)
		}
	case catalog.TableCategories:
		for _, c := range m.categories {
			out = append(out, c.ID)
		}
	case catalog.TableProducts:
		for _, p := range m.products {
			out = append(out, p.ID)
		}
	default:
		return nil, fmt.Errorf("table %s has no positions", t)
	}
	return out, nil
}

// Reorder rebuilds the table in the order given. ids must be exactly the
// table's current ids.
func (m *Memory) Reorder(_ context.Context, t catalog.Table, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, err := m.tableIDs(t)
	if err != nil {
		return err
	}
	if err := mask.IDSet(t, current, ids); err != nil {
		return err
	}
	switch t {
	case catalog.TablePropagandas:
		next := make([]catalog.Propaganda, 0, len(ids))
		for _, id := range ids {
			i := m.propagandaIndex(id)
			if i < 0 {
				return fmt.Errorf("reorder %s: id %d: %w", t, id, catalog.ErrNotFound)
			}
			next = append(next, m.propagandas[i])
		}
		m.propagandas = next
	case catalog.TableCategories:
		next := make([]catalog.Category, 0, len(ids))
		for _, id := range ids {
			i := m.categoryIndex(id)
			if i < 0 {
				return fmt.Errorf("reorder %s: id %d: %w", t, id, catalog.ErrNotFound)
			}
			next = append(next, m.categories[i])
		}
		m.categories = next
	case catalog.TableProducts:
		next := make([]catalog.Product, 0, len(ids))
		for _, id := range ids {
			i := m.productIndex(id)
			if i < 0 {
				return fmt.Errorf("reorder %s: id %d: %w", t, id, catalog.ErrNotFound)
			}
			next = append(next, m.products[i])
		}
		m.products = next
	default:
		return fmt.Errorf("table %s has no positions", t)
	}
	m.renumber()
	return nil
}

func (m *Memory) Credential(context.Context) (catalog.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.credential.PasswordHash == "" {
		return catalog.Credential{}, catalog.ErrNotFound
	}
	return m.credential, nil
}

func (m *Memory) SaveCredential(_ context.Context, c catalog.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = c
	return nil
}

func (m *Memory) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *Memory) renumber() {
	for i := range m.propagandas {
		m.propagandas[i].Position = i
	}
	for i := range m.categories {
		m.categories[i].Position = i
	}
	for i := range m.products {
		m.products[i].Position = i
	}
}

func (m *Memory) clickCount(productID int64) int {
	n := 0
	for _, c := range m.clicks {
		if c.ProductID == productID {
			n++
		}
	}
	return n
}

func (m *Memory) propagandaIndex(id int64) int {
	for i, p := range m.propagandas {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) categoryIndex(id int64) int {
	for i, c := range m.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) productIndex(id int64) int {
	for i, p := range m.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
