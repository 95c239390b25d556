package verification

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
)

type Category string

const (
	Consistency  Category = "consistency"
	Completeness Category = "completeness"
	Integrity    Category = "integrity"
	Authenticity Category = "authenticity"
	Evidence     Category = "evidence"
)

func (c Category) valid() bool {
	switch c {
	case Consistency, Completeness, Integrity, Authenticity, Evidence:
		return true
	}
	return false
}

// Period is the phase of the election a verification belongs to.
type Period string

const (
	Setup Period = "setup"
	Tally Period = "tally"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Setup, Tally:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Metadata describes one verification of the catalogue.
type Metadata struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Period   Period   `json:"period"`
}

// MetadataList is the validated catalogue, in file order.
type MetadataList struct {
	list []Metadata
	byID map[string]int
}

//go:embed metadata.json
var embeddedMetadata []byte

var idPattern = regexp.MustCompile(`^\d\d\.\d\d$`)

// LoadMetadata parses and validates a catalogue.
func LoadMetadata(b []byte) (*MetadataList, error) {
	var list []Metadata
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("cannot parse verification metadata: %w", err)
	}
	m := &MetadataList{list: list, byID: make(map[string]int, len(list))}
	for i, md := range list {
		if !idPattern.MatchString(md.ID) {
			return nil, fmt.Errorf("verification id %q is not of the form NN.NN", md.ID)
		}
		if md.Name == "" {
			return nil, fmt.Errorf("verification %s has no name", md.ID)
		}
		if !md.Category.valid() {
			return nil, fmt.Errorf("verification %s has unknown category %q", md.ID, md.Category)
		}
		if _, err := ParsePeriod(string(md.Period)); err != nil {
			return nil, fmt.Errorf("verification %s: %w", md.ID, err)
		}
		if _, ok := m.byID[md.ID]; ok {
			return nil, fmt.Errorf("duplicate verification id %s", md.ID)
		}
		m.byID[md.ID] = i
	}
	return m, nil
}

// DefaultMetadata is the catalogue built into the binary.
func DefaultMetadata() (*MetadataList, error) {
	return LoadMetadata(embeddedMetadata)
}

func (m *MetadataList) Get(id string) (Metadata, bool) {
	i, ok := m.byID[id]
	if !ok {
		return Metadata{}, false
	}
	return m.list[i], true
}

// ForPeriod lists the verifications of a period in catalogue order.
func (m *MetadataList) ForPeriod(period Period) []Metadata {
	var out []Metadata
	for _, md := range m.list {
		if md.Period == period {
			out = append(out, md)
		}
	}
	return out
}

func (m *MetadataList) Len() int {
	return len(m.list)
}
