package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Package status values.
const (
	PackageActive   = "Active"
	PackageInActive = "InActive"
)

// Package is an investment product definition.
type Package struct {
	ID                    primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name                  string             `json:"name" bson:"name"`
	MinAmount             float64            `json:"minAmount" bson:"minAmount"`
	MaxAmount             float64            `json:"maxAmount" bson:"maxAmount"`
	DurationDays          int                `json:"durationDays" bson:"durationDays"`
	TotalOutputPct        float64            `json:"totalOutputPct" bson:"totalOutputPct"`
	RenewablePrinciplePct float64            `json:"renewablePrinciplePct" bson:"renewablePrinciplePct"`
	ReferralPct           float64            `json:"referralPct" bson:"referralPct"`
	BinaryPct             float64            `json:"binaryPct" bson:"binaryPct"`
	PowerCapacity         float64            `json:"powerCapacity" bson:"powerCapacity"`
	Status                string             `json:"status" bson:"status"`
	CreatedAt             time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// packageDoc mirrors Package in storage and additionally carries the legacy
// field names still present on old documents ("roi" for the total output
// percentage, "cappingLimit" for the power capacity). Normalization happens
// here, at the decode boundary, so the rest of the engine only ever sees
// the canonical fields.
type packageDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Name                  string             `bson:"name"`
	MinAmount             float64            `bson:"minAmount"`
	MaxAmount             float64            `bson:"maxAmount"`
	DurationDays          int                `bson:"durationDays"`
	TotalOutputPct        float64            `bson:"totalOutputPct"`
	RenewablePrinciplePct float64            `bson:"renewablePrinciplePct"`
	ReferralPct           float64            `bson:"referralPct"`
	BinaryPct             float64            `bson:"binaryPct"`
	PowerCapacity         float64            `bson:"powerCapacity"`
	Status                string             `bson:"status"`
	CreatedAt             time.Time          `bson:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt"`

	// Legacy names
	ROI          float64 `bson:"roi"`
	CappingLimit float64 `bson:"cappingLimit"`
}

// UnmarshalBSON decodes a package document, folding legacy field names into
// the canonical schema.
func (p *Package) UnmarshalBSON(data []byte) error {
	var doc packageDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	p.ID = doc.ID
	p.Name = doc.Name
	p.MinAmount = doc.MinAmount
	p.MaxAmount = doc.MaxAmount
	p.DurationDays = doc.DurationDays
	p.TotalOutputPct = doc.TotalOutputPct
	p.RenewablePrinciplePct = doc.RenewablePrinciplePct
	p.ReferralPct = doc.ReferralPct
	p.BinaryPct = doc.BinaryPct
	p.PowerCapacity = doc.PowerCapacity
	p.Status = doc.Status
	p.CreatedAt = doc.CreatedAt
	p.UpdatedAt = doc.UpdatedAt

	if p.TotalOutputPct == 0 && doc.ROI > 0 {
		p.TotalOutputPct = doc.ROI
	}
	if p.PowerCapacity == 0 && doc.CappingLimit > 0 {
		p.PowerCapacity = doc.CappingLimit
	}
	if p.Status == "" {
		p.Status = PackageInActive
	}
	return nil
}

// IsActive reports whether the package can currently be invested in.
func (p *Package) IsActive() bool {
	return p.Status == PackageActive
}

// DailyOutputRate is the per-day accrual fraction of the invested amount.
func (p *Package) DailyOutputRate() float64 {
	if p.DurationDays == 0 {
		return 0
	}
	return p.TotalOutputPct / 100 / float64(p.DurationDays)
}

// PackageRequest is the admin create/update payload.
type PackageRequest struct {
	Name                  string  `json:"name" validate:"required"`
	MinAmount             float64 `json:"minAmount" validate:"required,gt=0"`
	MaxAmount             float64 `json:"maxAmount" validate:"required,gtefield=MinAmount"`
	DurationDays          int     `json:"durationDays" validate:"required,gt=0"`
	TotalOutputPct        float64 `json:"totalOutputPct" validate:"required,gte=0"`
	RenewablePrinciplePct float64 `json:"renewablePrinciplePct" validate:"gte=0"`
	ReferralPct           float64 `json:"referralPct" validate:"gte=0"`
	BinaryPct             float64 `json:"binaryPct" validate:"gte=0"`
	PowerCapacity         float64 `json:"powerCapacity" validate:"gte=0"`
	Status                string  `json:"status" validate:"omitempty,oneof=Active InActive"`
}
