package models

import (
	"time"

	"gorm.io/gorm"
)

// MXCacheEntry stores the resolved mail exchangers for a domain. An empty
// Hosts value is a cached negative result: the domain has no MX records and
// must not be re-queried on every batch.
type MXCacheEntry struct {
	Domain         string `gorm:"primaryKey" json:"domain"`
	Hosts          string `json:"hosts"` // semicolon-joined, ordered by MX preference
	LastResolvedAt time.Time `json:"last_resolved_at"`
}

func (MXCacheEntry) TableName() string {
	return "mx_cache"
}

// VerdictCacheEntry stores the last verdict computed for an address.
type VerdictCacheEntry struct {
	Email         string `gorm:"primaryKey" json:"email"`
	Verdict       string `gorm:"not null" json:"verdict"` // good, risky, bad
	ActiveStatus  string `json:"active_status"`           // active, inactive, unknown
	Reasons       string `json:"reasons"`                 // semicolon-joined reason codes
	LastCheckedAt time.Time `json:"last_checked_at"`
}

func (VerdictCacheEntry) TableName() string {
	return "verdict_cache"
}

// Migrate creates the cache tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&MXCacheEntry{},
		&VerdictCacheEntry{},
	)
}
