package domain

// Tag is a named label attached to a product.
type Tag struct {
	Name string `json:"name"`
}

// Product is a catalog product record as provided by the authoritative
// dataset. Records are immutable once loaded.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"` // minor currency units
	Tags        []Tag  `json:"tags"`
}

// Document is the backend-facing projection of a Product. Tags are
// denormalized into a flat string sequence for keyword indexing.
type Document struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Tags        []string `json:"tags"`
}

// NewDocument maps a product record to its index document. The mapping is
// pure and total: equal products always produce equal documents.
func NewDocument(p Product) Document {
	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = t.Name
	}
	return Document{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Tags:        tags,
	}
}

// NewDocuments maps a product sequence to documents, preserving order.
func NewDocuments(products []Product) []Document {
	docs := make([]Document, len(products))
	for i, p := range products {
		docs[i] = NewDocument(p)
	}
	return docs
}

// Product converts an index document back to a domain record. Tag order as
// returned by the backend is preserved.
func (d Document) Product() Product {
	tags := make([]Tag, len(d.Tags))
	for i, name := range d.Tags {
		tags[i] = Tag{Name: name}
	}
	return Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Tags:        tags,
	}
}
