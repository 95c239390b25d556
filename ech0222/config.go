package ech0222

import (
	"encoding/json"
	"fmt"
)

// Configuration is the part of the election configuration needed to
// place decoded voting options in the raw data.
type Configuration struct {
	ContestIdentification string           `json:"contestIdentification"`
	CountingCircles       []CountingCircle `json:"countingCircles"`
	Options               []Option         `json:"votingOptions"`
}

type CountingCircle struct {
	ID           string   `json:"countingCircleId"`
	BallotBoxIDs []string `json:"ballotBoxIds"`
}

// Option maps one actual voting option either to the answer of a
// question, or to a candidate position in an election. Write in options
// take their text from the decoded write ins in order.
type Option struct {
	ActualVotingOption string `json:"actualVotingOption"`

	VoteIdentification     string `json:"voteIdentification,omitempty"`
	BallotIdentification   string `json:"ballotIdentification,omitempty"`
	QuestionIdentification string `json:"questionIdentification,omitempty"`
	AnswerIdentification   string `json:"answerIdentification,omitempty"`

	ElectionGroupIdentification string `json:"electionGroupIdentification,omitempty"`
	ElectionIdentification      string `json:"electionIdentification,omitempty"`
	ListIdentification          string `json:"listIdentification,omitempty"`
	CandidateIdentification     string `json:"candidateIdentification,omitempty"`
	WriteIn                     bool   `json:"writeIn,omitempty"`
	Empty                       bool   `json:"empty,omitempty"`
}

func (o Option) isVote() bool {
	return o.VoteIdentification != ""
}

// ParseConfiguration decodes and checks an election configuration.
func ParseConfiguration(b []byte) (*Configuration, error) {
	c := &Configuration{}
	if err := json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("cannot decode election configuration: %w", err)
	}
	if c.ContestIdentification == "" {
		return nil, fmt.Errorf("election configuration has no contestIdentification")
	}
	seen := map[string]bool{}
	for _, o := range c.Options {
		if seen[o.ActualVotingOption] {
			return nil, fmt.Errorf("voting option %q configured twice", o.ActualVotingOption)
		}
		seen[o.ActualVotingOption] = true
		if o.isVote() == (o.ElectionIdentification != "") {
			return nil, fmt.Errorf("voting option %q must belong to exactly one vote or election", o.ActualVotingOption)
		}
	}
	return c, nil
}

func (c *Configuration) option(actual string) (Option, bool) {
	for _, o := range c.Options {
		if o.ActualVotingOption == actual {
			return o, true
		}
	}
	return Option{}, false
}

func (c *Configuration) countingCircle(ballotBox string) (string, bool) {
	for _, cc := range c.CountingCircles {
		for _, bb := range cc.BallotBoxIDs {
			if bb == ballotBox {
				return cc.ID, true
			}
		}
	}
	return "", false
}
