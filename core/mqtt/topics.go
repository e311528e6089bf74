package mqtt

import "strings"

// DefaultBase is the root of the topic namespace, matching the OpenEVSE
// default.
const DefaultBase = "openevse"

// Topics builds the hierarchical, slash-delimited topic namespace rooted at
// Base.
type Topics struct {
	Base string
}

// NewTopics returns a namespace rooted at base, falling back to DefaultBase
// when base is empty.
func NewTopics(base string) Topics {
	if base == "" {
		base = DefaultBase
	}
	return Topics{Base: base}
}

func (t Topics) Status() string { return t.Base + "/status" }
func (t Topics) Amp() string    { return t.Base + "/amp" }
func (t Topics) Volt() string   { return t.Base + "/volt" }
func (t Topics) Wh() string     { return t.Base + "/wh" }

// Command returns the inbound command topic for a RAPI suffix such as "$SC".
func (t Topics) Command(suffix string) string {
	return t.Base + "/rapi/in/" + suffix
}

// CommandWildcard matches the whole inbound command namespace.
func (t Topics) CommandWildcard() string {
	return t.Base + "/rapi/in/#"
}

// CommandSuffix extracts the RAPI suffix from a command topic. It returns
// the empty string for topics outside the command namespace.
func (t Topics) CommandSuffix(topic string) string {
	prefix := t.Base + "/rapi/in/"
	if !strings.HasPrefix(topic, prefix) {
		return ""
	}
	return topic[len(prefix):]
}
