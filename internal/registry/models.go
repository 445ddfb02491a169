package registry

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectType classifies the emission reduction or removal activity
type ProjectType string

const (
	TypeReforestation    ProjectType = "Reforestation"
	TypeRenewableEnergy  ProjectType = "Renewable Energy"
	TypeSolar            ProjectType = "Solar"
	TypeWind             ProjectType = "Wind"
	TypeMethaneCapture   ProjectType = "Methane Capture"
	TypeDirectAirCapture ProjectType = "Direct Air Capture"
	TypeGeothermal       ProjectType = "Geothermal"
	TypeHydroelectric    ProjectType = "Hydroelectric"
)

// IsValid reports whether the project type is a known activity class
func (t ProjectType) IsValid() bool {
	switch t {
	case TypeReforestation, TypeRenewableEnergy, TypeSolar, TypeWind,
		TypeMethaneCapture, TypeDirectAirCapture, TypeGeothermal, TypeHydroelectric:
		return true
	}
	return false
}

// Project represents a carbon offset project submitted for review
type Project struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `json:"description"`
	ProjectType   ProjectType    `gorm:"not null" json:"project_type"`
	Country       string         `json:"country"`
	Methodology   string         `json:"methodology"`
	VintageYear   int            `gorm:"not null" json:"vintage_year"`
	RequestedTons int64          `gorm:"not null" json:"requested_tons"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Status        string         `gorm:"not null;default:'UNDER_VALIDATION'" json:"status"`
	// MRVScore is the external verifier's confidence, recorded once at
	// decision time. It keeps pricing deterministic for a given project.
	MRVScore       *int           `json:"mrv_score,omitempty"`
	SDGImpacts     datatypes.JSON `json:"sdg_impacts,omitempty"`
	AuditDocuments datatypes.JSON `json:"audit_documents,omitempty"`
	ReviewedBy     *uuid.UUID     `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProjectFilter narrows project listings
type ProjectFilter struct {
	OwnerID *uuid.UUID
	Status  *string
}
