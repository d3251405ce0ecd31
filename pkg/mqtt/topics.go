package mqtt

import "strings"

// DefaultTopicPrefix is used when Config.TopicPrefix is empty.
const DefaultTopicPrefix = "homelink"

// Topics builds topic names under a prefix.
//
//	topics := Topics{Prefix: "homelink"}
//	topics.State("washer") // homelink/state/washer
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// State is the retained topic carrying a device's full state.
func (t Topics) State(deviceID string) string {
	return t.prefix() + "/state/" + deviceID
}

// Online is the retained availability topic, also used as the last will.
func (t Topics) Online() string {
	return t.prefix() + "/online"
}
