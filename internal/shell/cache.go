package shell

import (
	"sync"

	"github.com/talonops/talon/internal/api"
)

// UnknownHostname is written to the audit log and printed for devices whose
// metadata could not be resolved from the device directory.
const UnknownHostname = "<NO HOSTNAME>"

// MetadataCache maps device IDs to the metadata fetched at startup, plus any
// devices discovered later (a batch GET status can reference devices that
// joined the batch after the initial fan-out).
type MetadataCache struct {
	mu      sync.RWMutex
	devices map[string]api.Device
}

// NewMetadataCache seeds the cache with the startup device set.
func NewMetadataCache(devices map[string]api.Device) *MetadataCache {
	byID := make(map[string]api.Device, len(devices))
	for aid, d := range devices {
		byID[aid] = d
	}
	return &MetadataCache{devices: byID}
}

// Merge adds or replaces entries for the given devices.
func (m *MetadataCache) Merge(devices map[string]api.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for aid, d := range devices {
		m.devices[aid] = d
	}
}

// Get returns the cached device and whether it was present.
func (m *MetadataCache) Get(aid string) (api.Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[aid]
	return d, ok
}

// Hostname resolves a device ID to its hostname, or the UnknownHostname
// placeholder when the device is not in the cache or has no hostname.
func (m *MetadataCache) Hostname(aid string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.devices[aid]; ok && d.Hostname != "" {
		return d.Hostname
	}
	return UnknownHostname
}

// Missing returns the subset of aids with no cached metadata.
func (m *MetadataCache) Missing(aids []string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var missing []string
	for _, aid := range aids {
		if _, ok := m.devices[aid]; !ok {
			missing = append(missing, aid)
		}
	}
	return missing
}
