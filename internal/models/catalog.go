package models

// Category groups products. It cannot be deleted while it still owns any.
type Category struct {
	BaseModel
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Products    []Product `json:"products,omitempty"`
}
