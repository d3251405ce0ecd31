package device

import "time"

// Type is the platform device category (e.g. action.devices.types.WASHER).
type Type string

// Trait is a capability tag that gates which commands a device accepts.
type Trait string

// Device type constants
const (
	TypeWasher Type = "action.devices.types.WASHER"
	TypeLight  Type = "action.devices.types.LIGHT"
	TypeCloset Type = "action.devices.types.CLOSET"
	TypeFan    Type = "action.devices.types.FAN"
)

// Trait constants
const (
	TraitOnOff        Trait = "action.devices.traits.OnOff"
	TraitStartStop    Trait = "action.devices.traits.StartStop"
	TraitRunCycle     Trait = "action.devices.traits.RunCycle"
	TraitBrightness   Trait = "action.devices.traits.Brightness"
	TraitColorSetting Trait = "action.devices.traits.ColorSetting"
	TraitOpenClose    Trait = "action.devices.traits.OpenClose"
)

// knownTraits is the trait vocabulary a catalog may use.
var knownTraits = map[Trait]struct{}{
	TraitOnOff:        {},
	TraitStartStop:    {},
	TraitRunCycle:     {},
	TraitBrightness:   {},
	TraitColorSetting: {},
	TraitOpenClose:    {},
}

// KnownTrait reports whether t belongs to the supported trait vocabulary.
func KnownTrait(t Trait) bool {
	_, ok := knownTraits[t]
	return ok
}

// Name is display metadata echoed verbatim in discovery responses.
type Name struct {
	DefaultNames []string `json:"defaultNames,omitempty" yaml:"default_names"`
	Name         string   `json:"name" yaml:"name"`
	Nicknames    []string `json:"nicknames,omitempty" yaml:"nicknames"`
}

// Info is optional manufacturer metadata.
type Info struct {
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer"`
	Model        string `json:"model,omitempty" yaml:"model"`
	HwVersion    string `json:"hwVersion,omitempty" yaml:"hw_version"`
	SwVersion    string `json:"swVersion,omitempty" yaml:"sw_version"`
}

// Device is an immutable controllable device descriptor.
type Device struct {
	ID              string  `json:"id" yaml:"id"`
	Type            Type    `json:"type" yaml:"type"`
	Traits          []Trait `json:"traits" yaml:"traits"`
	Name            Name    `json:"name" yaml:"name"`
	WillReportState bool    `json:"willReportState" yaml:"will_report_state"`
	RoomHint        string  `json:"roomHint,omitempty" yaml:"room_hint"`
	DeviceInfo      *Info   `json:"deviceInfo,omitempty" yaml:"device_info"`
}

// HasTrait reports whether the device declares t.
func (d Device) HasTrait(t Trait) bool {
	for _, dt := range d.Traits {
		if dt == t {
			return true
		}
	}
	return false
}

// RunCycle describes the current phase of a cycle-running appliance.
type RunCycle struct {
	CurrentCycle string `json:"currentCycle"`
	NextCycle    string `json:"nextCycle"`
	Lang         string `json:"lang"`
}

// State is the runtime state of a single device as reported by QUERY.
type State struct {
	Online                    bool       `json:"online"`
	On                        bool       `json:"on"`
	IsPaused                  bool       `json:"isPaused"`
	IsRunning                 bool       `json:"isRunning"`
	CurrentRunCycle           []RunCycle `json:"currentRunCycle"`
	CurrentTotalRemainingTime int        `json:"currentTotalRemainingTime"`
	CurrentCycleRemainingTime int        `json:"currentCycleRemainingTime"`
}

// DefaultState returns the state every device starts with.
func DefaultState() State {
	return State{
		Online:    true,
		On:        true,
		IsPaused:  false,
		IsRunning: false,
		CurrentRunCycle: []RunCycle{
			{CurrentCycle: "rinse", NextCycle: "spin", Lang: "en"},
		},
		CurrentTotalRemainingTime: 1212,
		CurrentCycleRemainingTime: 301,
	}
}

// Delta is a partial state update keyed by state field name (on, isRunning, isPaused).
type Delta map[string]any

// StateEvent is broadcast after a delta has been applied to a device.
type StateEvent struct {
	DeviceID  string    `json:"device_id"`
	Delta     Delta     `json:"delta"`
	State     State     `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}
