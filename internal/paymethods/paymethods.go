// Package paymethods provides the payment-method lookup table queried by
// the payment agent: rows of (country, category, method name) keyed by
// normalized alpha-2 country code.
package paymethods

import (
	"sort"
	"sync"
)

// Row is one payment method offering.
type Row struct {
	Country  string // ISO alpha-2
	Category string // e.g. "card", "bank", "wallet"
	Name     string // method name, e.g. "visa"
}

// Store answers payment-method lookups. A lookup with no matching rows
// returns an empty slice, not an error.
type Store interface {
	// Lookup returns the distinct method names for a country, optionally
	// restricted to a category (empty category matches all), sorted
	// ascending.
	Lookup(country, category string) ([]string, error)

	// Close releases underlying resources.
	Close() error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []Row
}

// NewMemoryStore creates a store holding the given rows.
func NewMemoryStore(rows []Row) *MemoryStore {
	return &MemoryStore{rows: append([]Row(nil), rows...)}
}

// Lookup implements Store.
func (m *MemoryStore) Lookup(country, category string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for _, row := range m.rows {
		if row.Country != country {
			continue
		}
		if category != "" && row.Category != category {
			continue
		}
		seen[row.Name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

// DemoRows is a small built-in dataset for offline runs and tests.
func DemoRows() []Row {
	return []Row{
		{"US", "card", "visa"},
		{"US", "card", "mastercard"},
		{"US", "card", "amex"},
		{"US", "bank", "ach"},
		{"US", "bank", "wire_transfer"},

		{"GB", "card", "visa"},
		{"GB", "card", "mastercard"},
		{"GB", "bank", "faster_payments"},
		{"GB", "bank", "bacs"},

		{"BR", "card", "visa"},
		{"BR", "card", "mastercard"},
		{"BR", "bank", "pix"},
		{"BR", "bank", "ted"},

		{"DE", "card", "visa"},
		{"DE", "card", "mastercard"},
		{"DE", "bank", "sepa_credit_transfer"},
		{"DE", "bank", "sepa_direct_debit"},
	}
}
