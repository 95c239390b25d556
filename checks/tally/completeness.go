// Package tally holds the verifications of the tally period. They read
// the setup files they need to link the ballot boxes to their keys and
// verification card sets.
package tally

import (
	"fmt"
	"sort"

	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func indexed(kind payloads.Kind, i int) string {
	return fmt.Sprintf("%s[%d]", kind, i)
}

func bbContext(name string) string {
	return "ballot box " + name
}

func nodeContext(j int) string {
	return fmt.Sprintf("node %d", j)
}

// ballotBoxes runs fn for every ballot box, scoping its events.
func ballotBoxes(dir directory.Directory, res *verification.Result, fn func(res *verification.Result, bb directory.BallotBoxDirectory)) {
	for _, bb := range dir.Tally().BallotBoxes() {
		compare.Scope(res, bbContext(bb.Name()), func(res *verification.Result) {
			fn(res, bb)
		})
	}
}

// VerifyTallyCompleteness checks that the tally files are present and
// readable: the election configuration, the eCH-0222 delivery and the
// files of every ballot box of the election event context.
func VerifyTallyCompleteness(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	t := dir.Tally()
	_, err := t.ElectionConfiguration()
	compare.Found(res, directory.ElectionConfigurationFile, err)
	_, err = t.ECH0222()
	compare.Found(res, directory.ECH0222File, err)

	present := map[string]bool{}
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		present[bb.Name()] = true
		boxes := bb.ControlComponentBallotBoxes()
		res.Check(len(boxes) == payloads.ControlComponents, "expected %d %s, found %d",
			payloads.ControlComponents, payloads.KindControlComponentBallotBox, len(boxes))
		compare.FoundItems(res, payloads.KindControlComponentBallotBox, boxes)
		shuffles := bb.ControlComponentShuffles()
		res.Check(len(shuffles) == payloads.ControlComponents, "expected %d %s, found %d",
			payloads.ControlComponents, payloads.KindControlComponentShuffle, len(shuffles))
		compare.FoundItems(res, payloads.KindControlComponentShuffle, shuffles)
		_, err := bb.TallyComponentShuffle()
		compare.Found(res, payloads.KindTallyComponentShuffle.String(), err)
		_, err = bb.TallyComponentVotes()
		compare.Found(res, payloads.KindTallyComponentVotes.String(), err)
	})

	eec, err := dir.Setup().ElectionEventContext()
	if !compare.Read(res, payloads.KindElectionEventContext.String(), err) {
		return
	}
	expected := map[string]bool{}
	for _, c := range eec.ElectionEventContext.VerificationCardSetContexts {
		expected[c.BallotBoxID] = true
		res.Check(present[c.BallotBoxID], "%s has no directory", bbContext(c.BallotBoxID))
	}
	var extra []string
	for name := range present {
		if !expected[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		res.Failuref("%s is not in the %s", bbContext(name), payloads.KindElectionEventContext)
	}
}
