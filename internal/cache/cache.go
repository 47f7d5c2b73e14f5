// Package cache defines the timestamped byte cache shared by the staleness
// controller, the overlay store and the case service.
//
// Entries live in a namespace and carry the time they were fetched. Stores
// never expire entries on their own: age is compared against a TTL by the
// caller to decide whether to refresh, never whether to serve.
package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"legaltrack/pkg/platform/sentinel"
)

// Namespace groups entries that share one write lock and one Clear.
type Namespace string

const (
	NamespaceLists    Namespace = "lists"
	NamespaceDetails  Namespace = "details"
	NamespacePayloads Namespace = "payloads"
	NamespaceOverlay  Namespace = "overlay"
)

// Namespaces lists every namespace in Clear order.
var Namespaces = []Namespace{NamespaceLists, NamespaceDetails, NamespacePayloads, NamespaceOverlay}

// Cache keys. Each key has an independent fetch timestamp.
const (
	KeyCases             = "cases"
	KeyCompanies         = "companies"
	KeyCalendarEvents    = "calendar_events"
	KeyMonitoringObjects = "monitoring_objects_payload"
	KeyFines             = "fines_payload"
	KeyReadNotifications = "read_notifications"

	caseDetailPrefix        = "case_detail:"
	companyDetailPrefix     = "company_detail:"
	notificationsPagePrefix = "notifications:page:"
)

var (
	ErrNotFound  = sentinel.ErrNotFound
	ErrCorrupted = sentinel.ErrCorrupted
)

func CaseDetailKey(id int64) string {
	return caseDetailPrefix + strconv.FormatInt(id, 10)
}

func CompanyDetailKey(id int64) string {
	return companyDetailPrefix + strconv.FormatInt(id, 10)
}

func NotificationsPageKey(page int) string {
	return notificationsPagePrefix + strconv.Itoa(page)
}

// NamespaceOf maps a cache key to the namespace it is stored in.
func NamespaceOf(key string) Namespace {
	switch {
	case strings.HasPrefix(key, caseDetailPrefix), strings.HasPrefix(key, companyDetailPrefix):
		return NamespaceDetails
	case key == KeyMonitoringObjects, key == KeyFines:
		return NamespacePayloads
	case key == KeyReadNotifications:
		return NamespaceOverlay
	default:
		return NamespaceLists
	}
}

// Entry is a cached payload and the time it was fetched.
type Entry struct {
	Payload   []byte
	FetchedAt time.Time
}

// Age is the time elapsed since the entry was fetched. Never negative.
func (e Entry) Age(now time.Time) time.Duration {
	if age := now.Sub(e.FetchedAt); age > 0 {
		return age
	}
	return 0
}

// IsFresh reports whether the entry is younger than ttl.
func (e Entry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// Store persists entries. Implementations stamp FetchedAt from
// requestcontext.Now(ctx) on Put, return ErrNotFound for missing entries and
// ErrCorrupted for entries that exist but cannot be read back. A Put that
// fails or is interrupted leaves the previous entry intact.
type Store interface {
	Put(ctx context.Context, ns Namespace, key string, payload []byte) error
	Get(ctx context.Context, ns Namespace, key string) (Entry, error)
	Remove(ctx context.Context, ns Namespace, key string) error
	Clear(ctx context.Context, ns Namespace) error
	SizeOf(ctx context.Context, ns Namespace) (int64, error)
}

// SizeOfAll sums SizeOf across every namespace.
func SizeOfAll(ctx context.Context, s Store) (int64, error) {
	var total int64
	for _, ns := range Namespaces {
		n, err := s.SizeOf(ctx, ns)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// ClearAll clears every namespace, stopping at the first error.
func ClearAll(ctx context.Context, s Store) error {
	for _, ns := range Namespaces {
		if err := s.Clear(ctx, ns); err != nil {
			return err
		}
	}
	return nil
}
