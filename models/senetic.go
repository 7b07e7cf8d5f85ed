package models

// Both Senetic gateway endpoints wrap their payload in a "lines" envelope.

// InventoryFeed is the response of InventoryReportGet.
type InventoryFeed struct {
	Lines []InventoryLine `json:"lines"`
}

// InventoryLine is a single inventory record keyed by manufacturer item code.
type InventoryLine struct {
	ManufacturerItemCode string        `json:"manufacturerItemCode"`
	Availability         *Availability `json:"availability,omitempty"`
}

// Availability groups the stock schedules reported for an item.
type Availability struct {
	StockSchedules []StockSchedule `json:"stockSchedules"`
}

// StockSchedule is one delivery window with its target stock level.
type StockSchedule struct {
	TargetStock int `json:"targetStock"`
}

// AvailableQuantity sums the target stock across all schedules. Missing
// availability or an empty schedule list counts as zero.
func (l InventoryLine) AvailableQuantity() int {
	if l.Availability == nil {
		return 0
	}
	total := 0
	for _, s := range l.Availability.StockSchedules {
		total += s.TargetStock
	}
	return total
}

// CatalogueFeed is the response of ProductCatalogueGet.
type CatalogueFeed struct {
	Lines []CatalogueLine `json:"lines"`
}

// CatalogueLine is a single catalogue record keyed by manufacturer item code.
type CatalogueLine struct {
	ManufacturerItemCode     string        `json:"manufacturerItemCode"`
	ItemDescription          string        `json:"itemDescription"`
	LongItemDescription      string        `json:"longItemDescription"`
	UnitRetailPrice          *float64      `json:"unitRetailPrice,omitempty"`
	UnitNetPrice             float64       `json:"unitNetPrice,omitempty"`
	TaxRate                  float64       `json:"taxRate,omitempty"`
	EAN                      int64         `json:"ean,omitempty"`
	Weight                   float64       `json:"weight,omitempty"`
	ProductPrimaryBrand      *BrandNode    `json:"productPrimaryBrand,omitempty"`
	ProductSecondaryCategory *CategoryNode `json:"productSecondaryCategory,omitempty"`
}

// BrandNode is the brand tree node attached to a catalogue record.
type BrandNode struct {
	BrandNodeName string `json:"brandNodeName"`
}

// CategoryNode is the category tree node attached to a catalogue record.
type CategoryNode struct {
	CategoryNodeName string `json:"categoryNodeName"`
}

// BrandName returns the primary brand name, or "" when absent.
func (l CatalogueLine) BrandName() string {
	if l.ProductPrimaryBrand == nil {
		return ""
	}
	return l.ProductPrimaryBrand.BrandNodeName
}

// CategoryName returns the secondary category name, or "" when absent.
func (l CatalogueLine) CategoryName() string {
	if l.ProductSecondaryCategory == nil {
		return ""
	}
	return l.ProductSecondaryCategory.CategoryNodeName
}
