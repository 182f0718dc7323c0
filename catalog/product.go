package catalog

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/vecsearch/vector"
)

// Metadata keys under which a product is stored on its record.
const (
	keyName        = "name"
	keyDescription = "description"
	keyStock       = "stock_count"
	keyPrice       = "price"
	keyImage       = "image"
)

// Product is a catalog item. Its image and "name description" text are
// embedded into the record's image and text vectors.
type Product struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	StockCount  int     `yaml:"stock_count" json:"stock_count"`
	Price       float64 `yaml:"price" json:"price"`
	Image       []byte  `yaml:"-" json:"-"`
}

// Validate reports the first missing or invalid field.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case strings.TrimSpace(p.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidProduct)
	case p.StockCount < 0:
		return fmt.Errorf("%w: stock count %d is negative", ErrInvalidProduct, p.StockCount)
	case p.Price < 0:
		return fmt.Errorf("%w: price %.2f is negative", ErrInvalidProduct, p.Price)
	case len(p.Image) == 0:
		return fmt.Errorf("%w: image is required", ErrInvalidProduct)
	}
	return nil
}

// SearchText is the text embedded for a product.
func (p Product) SearchText() string {
	return p.Name + " " + p.Description
}

func (p Product) metadata() vector.Metadata {
	return vector.Metadata{
		keyName:        p.Name,
		keyDescription: p.Description,
		keyStock:       p.StockCount,
		keyPrice:       p.Price,
		keyImage:       base64.StdEncoding.EncodeToString(p.Image),
	}
}

// productFromRecord rebuilds a product from record metadata. Numeric fields
// come back as whatever the store's codec produced.
func productFromRecord(rec vector.Record) Product {
	p := Product{ID: rec.ID}
	p.Name, _ = rec.Metadata[keyName].(string)
	p.Description, _ = rec.Metadata[keyDescription].(string)
	p.StockCount = int(toFloat(rec.Metadata[keyStock]))
	p.Price = toFloat(rec.Metadata[keyPrice])
	if s, ok := rec.Metadata[keyImage].(string); ok {
		p.Image, _ = base64.StdEncoding.DecodeString(s)
	}
	return p
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
