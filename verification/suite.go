package verification

// Suite is the ordered list of the verifications of one period.
type Suite struct {
	period   Period
	list     []*Verification
	excluded []Metadata
}

// NewSuite builds a verification for every catalogue entry of the period,
// using funcs by id. Ids in exclusions are left out, exclusions that match
// no verification of the period are ignored.
func NewSuite(period Period, meta *MetadataList, funcs map[string]Func, exclusions []string) *Suite {
	skip := make(map[string]bool, len(exclusions))
	for _, id := range exclusions {
		skip[id] = true
	}
	s := &Suite{period: period}
	for _, md := range meta.ForPeriod(period) {
		if skip[md.ID] {
			s.excluded = append(s.excluded, md)
			continue
		}
		s.list = append(s.list, New(md, funcs[md.ID]))
	}
	return s
}

func (s *Suite) Period() Period { return s.period }

func (s *Suite) List() []*Verification { return s.list }

func (s *Suite) Len() int { return len(s.list) }

// Excluded lists the catalogue entries left out of the suite.
func (s *Suite) Excluded() []Metadata { return s.excluded }

func (s *Suite) LenExcluded() int { return len(s.excluded) }
