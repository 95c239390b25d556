package ech0222

import (
	"fmt"
	"sort"

	"github.com/thechriswalker/go-evote-verifier/payloads"
)

// BallotBox is the decoded content of one ballot box.
type BallotBox struct {
	ID    string
	Votes *payloads.TallyComponentVotesPayload
}

type voteKey struct{ vote, ballot string }
type electionKey struct{ group, election string }

type circle struct {
	votes     map[voteKey][]BallotCasted
	elections map[electionKey][]ElectionBallot
}

// Calculate builds the raw data the delivery should contain for the
// ballot boxes. Counting circles without ballot boxes are left out.
func Calculate(cfg *Configuration, boxes []BallotBox) (*RawData, error) {
	circles := map[string]*circle{}
	for _, bb := range boxes {
		ccID, ok := cfg.countingCircle(bb.ID)
		if !ok {
			return nil, fmt.Errorf("ballot box %s is in no counting circle", bb.ID)
		}
		cc := circles[ccID]
		if cc == nil {
			cc = &circle{votes: map[voteKey][]BallotCasted{}, elections: map[electionKey][]ElectionBallot{}}
			circles[ccID] = cc
		}
		for i, selected := range bb.Votes.ActualSelectedVotingOptions {
			var writeIns []string
			if i < len(bb.Votes.DecodedWriteInVotes) {
				writeIns = bb.Votes.DecodedWriteInVotes[i]
			}
			if err := cc.add(cfg, selected, writeIns); err != nil {
				return nil, fmt.Errorf("ballot box %s, vote %d: %w", bb.ID, i, err)
			}
		}
	}

	raw := &RawData{ContestIdentification: cfg.ContestIdentification}
	for _, c := range cfg.CountingCircles {
		cc, ok := circles[c.ID]
		if !ok {
			continue
		}
		raw.CountingCircles = append(raw.CountingCircles, cc.rawData(c.ID))
	}
	return raw, nil
}

// add places one decoded vote. Every vote and election touched by the
// selection gets one ballot.
func (cc *circle) add(cfg *Configuration, selected, writeIns []string) error {
	ballots := map[voteKey]*BallotCasted{}
	var voteOrder []voteKey
	elections := map[electionKey]*ElectionBallot{}
	var electionOrder []electionKey
	for _, actual := range selected {
		o, ok := cfg.option(actual)
		if !ok {
			return fmt.Errorf("unknown voting option %q", actual)
		}
		if o.isVote() {
			k := voteKey{o.VoteIdentification, o.BallotIdentification}
			b, ok := ballots[k]
			if !ok {
				b = &BallotCasted{}
				ballots[k] = b
				voteOrder = append(voteOrder, k)
			}
			b.Questions = append(b.Questions, QuestionRawData{
				QuestionIdentification: o.QuestionIdentification,
				AnswerIdentification:   o.AnswerIdentification,
			})
			continue
		}
		k := electionKey{o.ElectionGroupIdentification, o.ElectionIdentification}
		b, ok := elections[k]
		if !ok {
			b = &ElectionBallot{}
			elections[k] = b
			electionOrder = append(electionOrder, k)
		}
		switch {
		case o.WriteIn:
			if len(writeIns) == 0 {
				return fmt.Errorf("write in option %q without a decoded write in", actual)
			}
			b.Positions = append(b.Positions, BallotPosition{WriteIn: writeIns[0]})
			writeIns = writeIns[1:]
		case o.Empty:
			b.Positions = append(b.Positions, BallotPosition{IsEmpty: true})
		case o.CandidateIdentification != "":
			b.Positions = append(b.Positions, BallotPosition{CandidateIdentification: o.CandidateIdentification})
		default:
			b.ListIdentification = o.ListIdentification
		}
	}
	for _, k := range voteOrder {
		cc.votes[k] = append(cc.votes[k], *ballots[k])
	}
	for _, k := range electionOrder {
		cc.elections[k] = append(cc.elections[k], *elections[k])
	}
	return nil
}

func (cc *circle) rawData(id string) CountingCircleRawData {
	out := CountingCircleRawData{CountingCircleID: id}

	vks := make([]voteKey, 0, len(cc.votes))
	for k := range cc.votes {
		vks = append(vks, k)
	}
	sort.Slice(vks, func(i, j int) bool {
		if vks[i].vote != vks[j].vote {
			return vks[i].vote < vks[j].vote
		}
		return vks[i].ballot < vks[j].ballot
	})
	for _, k := range vks {
		if len(out.Votes) == 0 || out.Votes[len(out.Votes)-1].VoteIdentification != k.vote {
			out.Votes = append(out.Votes, VoteRawData{VoteIdentification: k.vote})
		}
		v := &out.Votes[len(out.Votes)-1]
		casted := cc.votes[k]
		for i := range casted {
			casted[i].BallotCastedNumber = i + 1
		}
		v.Ballots = append(v.Ballots, BallotRawData{BallotIdentification: k.ballot, BallotsCasted: casted})
	}

	eks := make([]electionKey, 0, len(cc.elections))
	for k := range cc.elections {
		eks = append(eks, k)
	}
	sort.Slice(eks, func(i, j int) bool {
		if eks[i].group != eks[j].group {
			return eks[i].group < eks[j].group
		}
		return eks[i].election < eks[j].election
	})
	for _, k := range eks {
		if len(out.ElectionGroups) == 0 || out.ElectionGroups[len(out.ElectionGroups)-1].ElectionGroupIdentification != k.group {
			out.ElectionGroups = append(out.ElectionGroups, ElectionGroupBallotRawData{ElectionGroupIdentification: k.group})
		}
		g := &out.ElectionGroups[len(out.ElectionGroups)-1]
		g.Elections = append(g.Elections, ElectionRawData{ElectionIdentification: k.election, Ballots: cc.elections[k]})
	}
	return out
}
