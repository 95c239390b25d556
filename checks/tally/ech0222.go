package tally

import (
	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/ech0222"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

// VerifyTallyECH0222 recalculates the raw data of the eCH-0222 delivery
// from the decoded votes of every ballot box and compares it with the
// delivered raw data. Test ballot boxes are not part of the delivery.
func VerifyTallyECH0222(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	if !cfg.CheckECH0222() {
		log.Info().Msg("eCH-0222 cross-check disabled")
		return
	}
	t := dir.Tally()
	conf, err := t.ElectionConfiguration()
	if !compare.Read(res, directory.ElectionConfigurationFile, err) {
		return
	}
	delivery, err := t.ECH0222()
	if !compare.Read(res, directory.ECH0222File, err) {
		return
	}
	eec, ok := electionEventContext(dir, res)
	if !ok {
		return
	}

	var boxes []ech0222.BallotBox
	complete := true
	for _, bb := range t.BallotBoxes() {
		c, ok := eec.ContextForBallotBox(bb.Name())
		if !ok {
			res.Errorf("%s is not in the %s", bbContext(bb.Name()), payloads.KindElectionEventContext)
			complete = false
			continue
		}
		if c.TestBallotBox {
			log.Debug().Str("ballot_box", bb.Name()).Msg("test ballot box left out of the eCH-0222 cross-check")
			continue
		}
		votes, err := bb.TallyComponentVotes()
		if !compare.Read(res, bbContext(bb.Name())+" "+payloads.KindTallyComponentVotes.String(), err) {
			complete = false
			continue
		}
		boxes = append(boxes, ech0222.BallotBox{ID: bb.Name(), Votes: votes})
	}
	if !complete {
		return
	}
	calculated, err := ech0222.Calculate(conf, boxes)
	if err != nil {
		res.Errorf("cannot calculate the raw data: %w", err)
		return
	}
	for _, d := range ech0222.Flatten(ech0222.Compare(calculated, &delivery.RawDataDelivery.RawData)) {
		res.Failuref("%s", d)
	}
}
