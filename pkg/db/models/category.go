package models

// Category is a catalog grouping. ParentID nil marks a top-level category;
// non-nil marks a subcategory. The schema permits deeper chains but the
// application only ever populates two levels.
type Category struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string `gorm:"column:name;not null"`
	Slug     string `gorm:"column:slug;not null"`
	ParentID *int64 `gorm:"column:parent_id;index"`
}
