package models

// Customer is the person an order is placed for.
type Customer struct {
	BaseModel
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `gorm:"uniqueIndex" json:"email"`
	Mobile      string  `json:"mobile"`
	AddressText string  `json:"address_text"`
	Orders      []Order `gorm:"constraint:OnDelete:CASCADE" json:"orders,omitempty"`
}

// FullName joins first and last name for display.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
