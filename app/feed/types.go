package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title     string
	Link      string
	UpdatedAt *time.Time
}

// RawRecord maps a field's local tag name to its trimmed text content
type RawRecord map[string]string

const (
	FieldTitle        = "title"
	FieldAvailability = "availability"
	FieldLink         = "link"
)

// Availability is the feed's own binary stock flag
type Availability string

const (
	AvailabilityInStock    Availability = "IN_STOCK"
	AvailabilityOutOfStock Availability = "OUT_OF_STOCK"
)

type Status string

const (
	StatusSoldOut        Status = "SOLD_OUT"
	StatusVariantSoldOut Status = "VARIANT_SOLD_OUT"
	StatusInStock        Status = "IN_STOCK"
	StatusPendingCheck   Status = "PENDING_CHECK"
	StatusCheckFailed    Status = "CHECK_FAILED"
)

// Rank is the sort precedence of a status, lower sorts first
func (s Status) Rank() int {
	switch s {
	case StatusSoldOut:
		return 0
	case StatusVariantSoldOut:
		return 1
	default:
		return 2
	}
}

// Label is the display label handed to the report surface
func (s Status) Label() string {
	switch s {
	case StatusSoldOut:
		return "Sold Out"
	case StatusVariantSoldOut:
		return "Variant Sold Out"
	case StatusInStock:
		return "In Stock"
	case StatusPendingCheck:
		return "Checking"
	case StatusCheckFailed:
		return "Check Failed"
	default:
		return string(s)
	}
}

// Product is one catalog entry. Status and rank only change together through
// SetStatus.
type Product struct {
	Name         string
	BaseName     string
	URL          string
	Availability Availability
	Detail       string

	status Status
	rank   int
}

func NewProduct(name, baseName, url string, availability Availability) *Product {
	p := &Product{
		Name:         name,
		BaseName:     baseName,
		URL:          url,
		Availability: availability,
	}

	if availability == AvailabilityOutOfStock {
		p.setStatus(StatusSoldOut, "feed reports out of stock")
	} else {
		p.setStatus(StatusInStock, "")
	}

	return p
}

func (p *Product) Status() Status {
	return p.status
}

func (p *Product) Rank() int {
	return p.rank
}

// SetStatus updates status, detail and rank. A feed-reported SOLD_OUT is final
// and is never overridden; SetStatus reports whether the change was applied.
func (p *Product) SetStatus(status Status, detail string) bool {
	if p.status == StatusSoldOut {
		return false
	}
	p.setStatus(status, detail)
	return true
}

func (p *Product) setStatus(status Status, detail string) {
	p.status = status
	p.rank = status.Rank()
	p.Detail = detail
}

// Catalog is the deduplicated product list in feed order, indexed by URL
type Catalog struct {
	Products []*Product
	byURL    map[string]*Product
}

func NewCatalog() *Catalog {
	return &Catalog{byURL: make(map[string]*Product)}
}

// Add appends p unless a product with the same URL was added before.
// Products without a URL are always added.
func (c *Catalog) Add(p *Product) bool {
	if p.URL != "" {
		if _, exists := c.byURL[p.URL]; exists {
			return false
		}
		c.byURL[p.URL] = p
	}
	c.Products = append(c.Products, p)
	return true
}

func (c *Catalog) Lookup(url string) (*Product, bool) {
	p, ok := c.byURL[url]
	return p, ok
}

func (c *Catalog) Len() int {
	return len(c.Products)
}
