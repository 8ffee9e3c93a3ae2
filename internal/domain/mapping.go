package domain

// MappingEntry links a provider ID to the NUTS ID allocated for it.
type MappingEntry struct {
	ProviderID string `json:"provider_id"`
	NutsID     NutsID `json:"nuts_id"`
}
