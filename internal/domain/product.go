package domain

import "github.com/uptrace/bun"

// Product is an ingredient catalog entry. Names are globally unique.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID            int64    `bun:"id,pk,autoincrement" json:"id"`
	Name          string   `bun:"name,notnull,unique" json:"name"`
	UnitOfMeasure string   `bun:"unit_of_measure,notnull" json:"unit_of_measure"`
	UnitCost      *float64 `bun:"unit_cost" json:"unit_cost,omitempty"`
	Category      *string  `bun:"category" json:"category,omitempty"`
	Supplier      *string  `bun:"supplier" json:"supplier,omitempty"`
	Description   *string  `bun:"description" json:"description,omitempty"`
	Barcode       *string  `bun:"barcode" json:"barcode,omitempty"`

	AuditModel
}
