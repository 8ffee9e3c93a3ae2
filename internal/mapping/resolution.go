package mapping

import "github.com/couchcryptid/camels-de1h/internal/domain"

// ResolvedAs tags how an identifier was matched.
type ResolvedAs int

const (
	NotFound ResolvedAs = iota
	FoundAsNuts
	FoundAsProvider
)

func (r ResolvedAs) String() string {
	switch r {
	case FoundAsNuts:
		return "nuts_id"
	case FoundAsProvider:
		return "provider_id"
	default:
		return "not_found"
	}
}

// Resolution is the outcome of classifying a station identifier.
type Resolution struct {
	As         ResolvedAs
	NutsID     domain.NutsID
	ProviderID string
}
