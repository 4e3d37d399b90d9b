package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    Document
	}{
		{
			name: "full record",
			product: Product{
				ID:          "p1",
				Name:        "Red Mug",
				Description: "A red ceramic mug",
				Price:       12,
				Tags:        []Tag{{Name: "kitchen"}, {Name: "ceramic"}},
			},
			want: Document{
				ID:          "p1",
				Name:        "Red Mug",
				Description: "A red ceramic mug",
				Price:       12,
				Tags:        []string{"kitchen", "ceramic"},
			},
		},
		{
			name:    "no tags",
			product: Product{ID: "p2", Name: "Blue Mug", Price: 10},
			want:    Document{ID: "p2", Name: "Blue Mug", Price: 10, Tags: []string{}},
		},
		{
			name:    "zero price",
			product: Product{ID: "p3", Name: "Freebie", Price: 0, Tags: []Tag{{Name: "promo"}}},
			want:    Document{ID: "p3", Name: "Freebie", Price: 0, Tags: []string{"promo"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDocument(tt.product))
		})
	}
}

func TestNewDocumentDeterministic(t *testing.T) {
	p := Product{
		ID:    "p1",
		Name:  "Red Mug",
		Price: 12,
		Tags:  []Tag{{Name: "kitchen"}},
	}

	first := NewDocument(p)
	second := NewDocument(p)
	assert.Equal(t, first, second)
}

func TestNewDocumentsPreservesOrder(t *testing.T) {
	products := []Product{
		{ID: "p1", Name: "Red Mug"},
		{ID: "p2", Name: "Blue Mug"},
		{ID: "p3", Name: "Red Shirt"},
	}

	docs := NewDocuments(products)
	require.Len(t, docs, 3)
	assert.Equal(t, "p1", docs[0].ID)
	assert.Equal(t, "p2", docs[1].ID)
	assert.Equal(t, "p3", docs[2].ID)
}

func TestDocumentProductRoundTrip(t *testing.T) {
	p := Product{
		ID:          "p1",
		Name:        "Red Mug",
		Description: "A red ceramic mug",
		Price:       12,
		Tags:        []Tag{{Name: "kitchen"}, {Name: "ceramic"}},
	}

	got := NewDocument(p).Product()
	assert.Equal(t, p, got)
}
