package catalog

import "time"

// SingletonID addresses the header, footer and admin rows.
const SingletonID = "only"

// Header is the storefront top bar: icon, logo, title, tagline and theme color.
type Header struct {
	Icon        string `json:"icon"`
	Logo        string `json:"logo"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Footer is the storefront footer and contact block.
type Footer struct {
	Title             string `json:"title"`
	Text              string `json:"text"`
	Whatsapp          string `json:"whatsapp"`
	Facebook          string `json:"facebook"`
	Instagram         string `json:"instagram"`
	Location          string `json:"location"`
	StoreInfo         string `json:"storeInfo"`
	CompleteStoreInfo string `json:"completeStoreInfo"`
}

// Propaganda is a carousel banner. Both images are storage keys.
type Propaganda struct {
	ID         int64  `json:"id"`
	BigImage   string `json:"bigImage"`
	SmallImage string `json:"smallImage"`
	Position   int    `json:"position"`
}

// Category groups products on the storefront.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Product is a catalog item ordered through WhatsApp.
type Product struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Off         int    `json:"off"`
	Installment string `json:"installment"`
	Whatsapp    string `json:"whatsapp"`
	Message     string `json:"message"`
	Image       string `json:"image"`
	Position    int    `json:"position"`
	Clicks      int    `json:"clicks"`
}

// Click is one entry of a product's order-access history.
type Click struct {
	ProductID int64     `json:"product"`
	At        time.Time `json:"at"`
}

// Credential is the single admin login. Hashes are bcrypt.
type Credential struct {
	UsernameHash string
	PasswordHash string
	Token        string
}
