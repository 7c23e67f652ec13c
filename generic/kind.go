/*
kind.go - Registry of named enumerations

PURPOSE:
  Earning categories and day-status types are stored and transmitted as
  plain strings. Domain packages register their values here so that the
  store and the API can turn a string back into the concrete Go value
  without importing every domain package.

HOW IT WORKS:
  1. Domain packages define a string type implementing Kind
  2. They register every value from init()
  3. Parsers call LookupKind(domain, id)

USAGE:
  // In attendance/types.go
  func init() {
      generic.RegisterKind(StatusSick)
  }

  // In the API layer
  k := generic.LookupKind("day_status", "sick") // attendance.StatusSick

SEE ALSO:
  - compensation/types.go: earning categories
  - attendance/types.go: day-status types
*/
package generic

import (
	"fmt"
	"sort"
	"sync"
)

// Kind is one value of a registered enumeration.
type Kind interface {
	KindID() string
	KindDomain() string
}

type kindKey struct {
	domain string
	id     string
}

var (
	kindRegistry = make(map[kindKey]Kind)
	kindOrder    = make(map[string][]Kind)
	registryMu   sync.RWMutex
)

// RegisterKind adds a value to the registry. Registration order is kept per
// domain and is the order ListKinds returns.
func RegisterKind(k Kind) {
	registryMu.Lock()
	defer registryMu.Unlock()
	key := kindKey{domain: k.KindDomain(), id: k.KindID()}
	if _, exists := kindRegistry[key]; exists {
		return
	}
	kindRegistry[key] = k
	kindOrder[k.KindDomain()] = append(kindOrder[k.KindDomain()], k)
}

// LookupKind finds a registered value. Returns nil if not found.
func LookupKind(domain, id string) Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return kindRegistry[kindKey{domain: domain, id: id}]
}

// ParseKind is LookupKind with an ErrInvalidKind error for unknown values.
func ParseKind(domain, id string) (Kind, error) {
	if k := LookupKind(domain, id); k != nil {
		return k, nil
	}
	return nil, fmt.Errorf("%w: %s %q", ErrInvalidKind, domain, id)
}

// ListKinds returns the values of a domain in registration order.
func ListKinds(domain string) []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Kind, len(kindOrder[domain]))
	copy(out, kindOrder[domain])
	return out
}

// ListDomains returns every domain with at least one registered value.
func ListDomains() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	domains := make([]string, 0, len(kindOrder))
	for d := range kindOrder {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}
