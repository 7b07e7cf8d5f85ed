package models

// Shopify Admin REST payloads (2024-04). Only the fields the sync touches.

// ProductPayload wraps a product for create/update requests and responses.
type ProductPayload struct {
	Product Product `json:"product"`
}

// Product is a storefront product with its variants.
type Product struct {
	ID          int64     `json:"id,omitempty"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	CreatedAt   string    `json:"created_at,omitempty"`
	UpdatedAt   string    `json:"updated_at,omitempty"`
	Variants    []Variant `json:"variants"`
}

// Variant is a single sellable variant. The sync always writes exactly one.
type Variant struct {
	ID                  int64   `json:"id,omitempty"`
	ProductID           int64   `json:"product_id,omitempty"`
	Price               string  `json:"price"`
	Cost                string  `json:"cost,omitempty"`
	SKU                 string  `json:"sku"`
	Barcode             string  `json:"barcode,omitempty"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	InventoryManagement string  `json:"inventory_management"`
	Weight              float64 `json:"weight"`
	WeightUnit          string  `json:"weight_unit"`
}

// VariantList is the response of the variant search endpoint.
type VariantList struct {
	Variants []Variant `json:"variants"`
}

// ProductList is the response of the product listing endpoint.
type ProductList struct {
	Products []Product `json:"products"`
}

// ImagePayload wraps an image for the image-attach endpoint.
type ImagePayload struct {
	Image Image `json:"image"`
}

// Image is a product image referenced by source URL.
type Image struct {
	ID       int64  `json:"id,omitempty"`
	Src      string `json:"src"`
	Filename string `json:"filename,omitempty"`
}
