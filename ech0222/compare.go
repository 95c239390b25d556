package ech0222

import (
	"fmt"
	"sort"
	"strings"
)

// Difference explains why two raw data differ. Reason is the nested cause,
// if any.
type Difference struct {
	Message string
	Reason  *Difference
}

func (d *Difference) String() string {
	if d.Reason == nil {
		return d.Message
	}
	return d.Message + ": " + d.Reason.String()
}

func because(msg string, reason *Difference) *Difference {
	return &Difference{Message: msg, Reason: reason}
}

// Flatten renders every difference chain as one line.
func Flatten(ds []*Difference) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

// Compare lists the differences between the calculated raw data and the
// raw data of the delivery. Ballots are compared as multisets, the order
// of ballots is not significant.
func Compare(calculated, delivered *RawData) []*Difference {
	var out []*Difference
	if calculated.ContestIdentification != delivered.ContestIdentification {
		out = append(out, &Difference{Message: fmt.Sprintf(
			"contest identification %q is %q in the delivery",
			calculated.ContestIdentification, delivered.ContestIdentification,
		)})
	}
	cs := map[string]CountingCircleRawData{}
	for _, c := range delivered.CountingCircles {
		cs[c.CountingCircleID] = c
	}
	for _, c := range calculated.CountingCircles {
		d, ok := cs[c.CountingCircleID]
		delete(cs, c.CountingCircleID)
		msg := fmt.Sprintf("counting circle %s differs", c.CountingCircleID)
		if !ok {
			out = append(out, because(msg, &Difference{Message: "missing in the delivery"}))
			continue
		}
		for _, r := range compareCircle(c, d) {
			out = append(out, because(msg, r))
		}
	}
	for _, id := range sortedKeys(cs) {
		out = append(out, because(
			fmt.Sprintf("counting circle %s differs", id),
			&Difference{Message: "not calculated from any ballot box"},
		))
	}
	return out
}

func compareCircle(c, d CountingCircleRawData) []*Difference {
	var out []*Difference

	calc, deliv := voteHistograms(c.Votes), voteHistograms(d.Votes)
	for _, id := range unionKeys(calc, deliv) {
		for _, r := range compareHistograms(calc[id], deliv[id]) {
			out = append(out, because(fmt.Sprintf("vote %s differs", id), r))
		}
	}

	calc, deliv = electionHistograms(c.ElectionGroups), electionHistograms(d.ElectionGroups)
	for _, id := range unionKeys(calc, deliv) {
		for _, r := range compareHistograms(calc[id], deliv[id]) {
			out = append(out, because(fmt.Sprintf("election %s differs", id), r))
		}
	}
	return out
}

type histogram map[string]int

func compareHistograms(calc, deliv histogram) []*Difference {
	var out []*Difference
	for _, k := range unionKeys(calc, deliv) {
		if calc[k] != deliv[k] {
			out = append(out, because(
				fmt.Sprintf("ballot [%s]", k),
				&Difference{Message: fmt.Sprintf("counted %d times but %d times in the delivery", calc[k], deliv[k])},
			))
		}
	}
	return out
}

func voteHistograms(votes []VoteRawData) map[string]histogram {
	out := map[string]histogram{}
	for _, v := range votes {
		for _, b := range v.Ballots {
			id := v.VoteIdentification + "/" + b.BallotIdentification
			if out[id] == nil {
				out[id] = histogram{}
			}
			for _, c := range b.BallotsCasted {
				answers := make([]string, len(c.Questions))
				for i, q := range c.Questions {
					answers[i] = q.QuestionIdentification + "=" + q.AnswerIdentification
				}
				sort.Strings(answers)
				out[id][strings.Join(answers, ", ")]++
			}
		}
	}
	return out
}

func electionHistograms(groups []ElectionGroupBallotRawData) map[string]histogram {
	out := map[string]histogram{}
	for _, g := range groups {
		for _, e := range g.Elections {
			id := g.ElectionGroupIdentification + "/" + e.ElectionIdentification
			if out[id] == nil {
				out[id] = histogram{}
			}
			for _, b := range e.Ballots {
				positions := make([]string, len(b.Positions))
				for i, p := range b.Positions {
					switch {
					case p.IsEmpty:
						positions[i] = "empty"
					case p.WriteIn != "":
						positions[i] = "writeIn=" + p.WriteIn
					default:
						positions[i] = "candidate=" + p.CandidateIdentification
					}
				}
				sort.Strings(positions)
				key := "list=" + b.ListIdentification
				if len(positions) > 0 {
					key += ", " + strings.Join(positions, ", ")
				}
				out[id][key]++
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func unionKeys[V any](a, b map[string]V) []string {
	u := map[string]struct{}{}
	for k := range a {
		u[k] = struct{}{}
	}
	for k := range b {
		u[k] = struct{}{}
	}
	return sortedKeys(u)
}
