// Package setup holds the verifications of the setup period.
package setup

import (
	"fmt"
	"sort"

	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func errOf[T any](_ T, err error) error {
	return err
}

func indexed(kind payloads.Kind, i int) string {
	return fmt.Sprintf("%s[%d]", kind, i)
}

func vcsContext(name string) string {
	return "verification card set " + name
}

// VerifySetupCompleteness checks that every setup file is present and
// readable, for every control component and every verification card set
// of the election event context.
func VerifySetupCompleteness(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	compare.Found(res, payloads.KindEncryptionParameters.String(), errOf(s.EncryptionParameters()))
	eec, err := s.ElectionEventContext()
	compare.Found(res, payloads.KindElectionEventContext.String(), err)
	compare.Found(res, payloads.KindSetupComponentPublicKeys.String(), errOf(s.SetupComponentPublicKeys()))

	keys := s.ControlComponentPublicKeys()
	res.Check(len(keys) == payloads.ControlComponents, "expected %d %s, found %d",
		payloads.ControlComponents, payloads.KindControlComponentPublicKeys, len(keys))
	compare.FoundItems(res, payloads.KindControlComponentPublicKeys, keys)

	present := map[string]bool{}
	for _, vcs := range s.VerificationCardSets() {
		present[vcs.Name()] = true
		sub := verification.NewResult()
		compare.Found(sub, payloads.KindSetupComponentTallyData.String(), errOf(vcs.SetupComponentTallyData()))
		data := vcs.SetupComponentVerificationData()
		sub.Check(len(data) > 0, "no %s", payloads.KindSetupComponentVerificationData)
		compare.FoundItems(sub, payloads.KindSetupComponentVerificationData, data)
		shares := vcs.ControlComponentCodeShares()
		sub.Check(len(shares) == len(data), "%d chunks of %s for %d chunks of %s",
			len(shares), payloads.KindControlComponentCodeShares, len(data), payloads.KindSetupComponentVerificationData)
		compare.FoundItems(sub, payloads.KindControlComponentCodeShares, shares)
		res.AppendWithContext(sub, vcsContext(vcs.Name()))
	}

	if eec == nil {
		return
	}
	expected := map[string]bool{}
	for _, c := range eec.ElectionEventContext.VerificationCardSetContexts {
		expected[c.VerificationCardSetID] = true
		res.Check(present[c.VerificationCardSetID], "%s has no directory", vcsContext(c.VerificationCardSetID))
	}
	var extra []string
	for name := range present {
		if !expected[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		res.Failuref("%s is not in the %s", vcsContext(name), payloads.KindElectionEventContext)
	}
}
