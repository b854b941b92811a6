package domain

import "github.com/uptrace/bun"

// RecipeImage is the metadata row for one stored picture attached to a
// recipe. The physical file lives in the file store at RelativePath and is
// owned exclusively by this row.
//
// At most one image per recipe carries Principal = true. The invariant is
// maintained procedurally by the image service, which demotes siblings and
// promotes the target inside a single transaction.
type RecipeImage struct {
	bun.BaseModel `bun:"table:recipe_images,alias:img"`

	ID           int64   `bun:"id,pk,autoincrement" json:"id"`
	RecipeID     int64   `bun:"recipe_id,notnull" json:"recipe_id"`
	StoredName   string  `bun:"stored_name,notnull" json:"stored_name"`
	OriginalName string  `bun:"original_name,notnull" json:"original_name"`
	RelativePath string  `bun:"relative_path,notnull" json:"relative_path"`
	MimeType     string  `bun:"mime_type,notnull" json:"mime_type"`
	SizeBytes    int64   `bun:"size_bytes,notnull" json:"size_bytes"`
	Width        *int    `bun:"width" json:"width,omitempty"`
	Height       *int    `bun:"height" json:"height,omitempty"`
	Principal    bool    `bun:"principal,notnull,default:false" json:"principal"`
	Description  *string `bun:"description" json:"description,omitempty"`
	DisplayOrder int     `bun:"display_order,notnull,default:0" json:"display_order"`

	AuditModel
}
