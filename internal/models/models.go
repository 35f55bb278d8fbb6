package models

type User struct {
	Base
	Email       string   `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string   `gorm:"not null" json:"-"`
	DisplayName string   `json:"displayName"`
	Role        UserRole `gorm:"not null;default:'MEMBER'" json:"role"`
}

// Form is the owning entity for access rows and embed domains. Schema,
// rendering and submission storage live in other services; only the fields
// the access subsystem reads are modeled here.
type Form struct {
	Base
	Title        string `gorm:"not null" json:"title" validate:"required,min=2"`
	OwnerID      string `gorm:"type:uuid;not null" json:"ownerId"`
	Owner        *User  `json:"owner,omitempty"`
	PublicAccess bool   `gorm:"not null;default:false" json:"publicAccess"`

	EmbedDomains []FormEmbedDomain `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"embedDomains,omitempty"`
	UserRoles    []UserFormRole    `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"userRoles,omitempty"`
}
