package catalog

// Table names one of the editable content tables.
type Table string

const (
	TableHeader      Table = "header"
	TableFooter      Table = "footer"
	TablePropagandas Table = "propagandas"
	TableCategories  Table = "categories"
	TableProducts    Table = "products"
)

// Singleton reports whether the table holds exactly one row addressed by SingletonID.
func (t Table) Singleton() bool {
	return t == TableHeader || t == TableFooter
}

// Orderable reports whether rows of the table carry a position.
func (t Table) Orderable() bool {
	return t == TablePropagandas || t == TableCategories || t == TableProducts
}

// Kind tells how a column is written: plain text or an uploaded image key.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

// Field is one editable (table, column) pair. The set of fields is closed:
// only the values declared below exist, and every store maps each of them to
// a fixed statement.
type Field struct {
	Table  Table
	Column string
	Kind   Kind
}

func (f Field) String() string {
	return string(f.Table) + "." + f.Column
}

var (
	HeaderIcon        = Field{TableHeader, "icon", KindImage}
	HeaderLogo        = Field{TableHeader, "logo", KindImage}
	HeaderTitle       = Field{TableHeader, "title", KindText}
	HeaderDescription = Field{TableHeader, "description", KindText}
	HeaderColor       = Field{TableHeader, "color", KindText}

	FooterTitle             = Field{TableFooter, "title", KindText}
	FooterText              = Field{TableFooter, "text", KindText}
	FooterWhatsapp          = Field{TableFooter, "whatsapp", KindText}
	FooterFacebook          = Field{TableFooter, "facebook", KindText}
	FooterInstagram         = Field{TableFooter, "instagram", KindText}
	FooterLocation          = Field{TableFooter, "location", KindText}
	FooterStoreInfo         = Field{TableFooter, "storeInfo", KindText}
	FooterCompleteStoreInfo = Field{TableFooter, "completeStoreInfo", KindText}

	PropagandaBigImage   = Field{TablePropagandas, "bigImage", KindImage}
	PropagandaSmallImage = Field{TablePropagandas, "smallImage", KindImage}

	CategoryName = Field{TableCategories, "name", KindText}

	ProductCategory    = Field{TableProducts, "category", KindText}
	ProductName        = Field{TableProducts, "name", KindText}
	ProductPrice       = Field{TableProducts, "price", KindText}
	ProductOff         = Field{TableProducts, "off", KindText}
	ProductInstallment = Field{TableProducts, "installment", KindText}
	ProductWhatsapp    = Field{TableProducts, "whatsapp", KindText}
	ProductMessage     = Field{TableProducts, "message", KindText}
	ProductImage       = Field{TableProducts, "image", KindImage}
)

var allFields = []Field{
	HeaderIcon, HeaderLogo, HeaderTitle, HeaderDescription, HeaderColor,
	FooterTitle, FooterText, FooterWhatsapp, FooterFacebook, FooterInstagram,
	FooterLocation, FooterStoreInfo, FooterCompleteStoreInfo,
	PropagandaBigImage, PropagandaSmallImage,
	CategoryName,
	ProductCategory, ProductName, ProductPrice, ProductOff, ProductInstallment,
	ProductWhatsapp, ProductMessage, ProductImage,
}

// Fields returns every editable field.
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// LookupField resolves a (table, column) pair from a request path.
func LookupField(table Table, column string) (Field, bool) {
	for _, f := range allFields {
		if f.Table == table && f.Column == column {
			return f, true
		}
	}
	return Field{}, false
}
