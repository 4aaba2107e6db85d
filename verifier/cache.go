package verifier

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mailsift/models"
)

// Cache is the persistent resolution cache: domain→MX records and
// email→verdict, backed by an embedded store. It is purely passive storage;
// callers populate it on read-miss. All mutation is funneled through a single
// mutex so concurrent workers cannot produce torn or divergent writes.
type Cache struct {
	db         *gorm.DB
	mu         sync.Mutex
	mxTTL      time.Duration // 0 = entries never go stale
	verdictTTL time.Duration // 0 = verdicts are authoritative until invalidated
	log        logrus.FieldLogger
}

// NewCache wraps an opened store. TTLs of zero preserve the historical
// behavior of treating cached entries as permanent.
func NewCache(db *gorm.DB, mxTTL, verdictTTL time.Duration, log logrus.FieldLogger) *Cache {
	return &Cache{db: db, mxTTL: mxTTL, verdictTTL: verdictTTL, log: log}
}

// GetMX returns the cached record for a domain. A row with no hosts is a
// valid negative result and still counts as a hit.
func (c *Cache) GetMX(domain string) (MXRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var row models.MXCacheEntry
	err := c.db.First(&row, "domain = ?", domain).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.log.WithError(err).WithField("domain", domain).Warn("mx cache read failed")
		}
		return MXRecord{}, false
	}
	if c.mxTTL > 0 && time.Since(row.LastResolvedAt) > c.mxTTL {
		return MXRecord{}, false
	}
	return MXRecord{
		Domain:     row.Domain,
		Hosts:      splitHosts(row.Hosts),
		ResolvedAt: row.LastResolvedAt,
	}, true
}

// PutMX upserts a resolution result, including empty (negative) records.
func (c *Cache) PutMX(rec MXRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := models.MXCacheEntry{
		Domain:         rec.Domain,
		Hosts:          strings.Join(rec.Hosts, ";"),
		LastResolvedAt: rec.ResolvedAt,
	}
	if err := c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		c.log.WithError(err).WithField("domain", rec.Domain).Warn("mx cache write failed")
	}
}

// GetVerdict returns the cached verdict for a normalized address.
func (c *Cache) GetVerdict(email string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var row models.VerdictCacheEntry
	err := c.db.First(&row, "email = ?", email).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.log.WithError(err).WithField("email", email).Warn("verdict cache read failed")
		}
		return Result{}, false
	}
	if c.verdictTTL > 0 && time.Since(row.LastCheckedAt) > c.verdictTTL {
		return Result{}, false
	}
	return Result{
		Email:        row.Email,
		Verdict:      row.Verdict,
		ActiveStatus: row.ActiveStatus,
		Reasons:      splitHosts(row.Reasons),
	}, true
}

// PutVerdict upserts a terminal verdict. Last write wins; verdicts for the
// same address are deterministic given the same cache inputs.
func (c *Cache) PutVerdict(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := models.VerdictCacheEntry{
		Email:         res.Email,
		Verdict:       res.Verdict,
		ActiveStatus:  res.ActiveStatus,
		Reasons:       strings.Join(res.Reasons, ";"),
		LastCheckedAt: time.Now(),
	}
	if err := c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		c.log.WithError(err).WithField("email", res.Email).Warn("verdict cache write failed")
	}
}

func splitHosts(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ";")
}
