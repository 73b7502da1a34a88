package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are assigned client side so inserts behave the same on postgres and sqlite.

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *BusinessType) BeforeCreate(*gorm.DB) error  { assignID(&m.ID); return nil }
func (m *Module) BeforeCreate(*gorm.DB) error        { assignID(&m.ID); return nil }
func (m *Tenant) BeforeCreate(*gorm.DB) error        { assignID(&m.ID); return nil }
func (m *Promo) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *PromoProduct) BeforeCreate(*gorm.DB) error  { assignID(&m.ID); return nil }
func (m *PromoCategory) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *PromoBundle) BeforeCreate(*gorm.DB) error   { assignID(&m.ID); return nil }
