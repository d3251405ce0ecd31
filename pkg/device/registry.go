package device

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// catalogFile is the on-disk layout of a device catalog.
type catalogFile struct {
	Devices []Device `yaml:"devices"`
}

// Registry is the static, read-only catalog of controllable devices.
// It is populated once at startup and never mutated afterwards.
type Registry struct {
	devices []Device
	byID    map[string]int
}

// NewRegistry builds a registry from devices, enforcing id uniqueness and
// a non-empty, known trait set for every device.
func NewRegistry(devices []Device) (*Registry, error) {
	r := &Registry{
		devices: make([]Device, 0, len(devices)),
		byID:    make(map[string]int, len(devices)),
	}

	for _, d := range devices {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: device with empty id", ErrInvalidCatalog)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate device id %q", ErrInvalidCatalog, d.ID)
		}
		if len(d.Traits) == 0 {
			return nil, fmt.Errorf("%w: device %q declares no traits", ErrInvalidCatalog, d.ID)
		}
		for _, t := range d.Traits {
			if !KnownTrait(t) {
				return nil, fmt.Errorf("%w: device %q declares unknown trait %q", ErrInvalidCatalog, d.ID, t)
			}
		}

		r.byID[d.ID] = len(r.devices)
		r.devices = append(r.devices, d)
	}

	return r, nil
}

// ParseCatalog decodes a YAML catalog document into a registry.
func ParseCatalog(data []byte) (*Registry, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewRegistry(cf.Devices)
}

// LoadCatalog loads a registry from path, or from the embedded default
// catalog when path is empty.
func LoadCatalog(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// DefaultRegistry returns the registry built from the embedded catalog.
func DefaultRegistry() (*Registry, error) {
	return ParseCatalog(defaultCatalog)
}

// List returns all devices in catalog order.
func (r *Registry) List() []Device {
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Get returns the device with the given id.
func (r *Registry) Get(id string) (Device, error) {
	i, ok := r.byID[id]
	if !ok {
		return Device{}, ErrNotFound
	}
	return r.devices[i], nil
}

// Len returns the number of devices in the registry.
func (r *Registry) Len() int {
	return len(r.devices)
}
