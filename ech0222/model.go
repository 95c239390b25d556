// Package ech0222 cross checks the raw data of the eCH-0222 delivery
// against the raw data calculated from the decoded votes of the ballot
// boxes.
package ech0222

import (
	"encoding/xml"
	"fmt"
)

const Namespace = "http://www.ech.ch/xmlns/eCH-0222/1"

// Delivery is the root of an eCH-0222 document.
type Delivery struct {
	XMLName         xml.Name        `xml:"delivery"`
	DeliveryHeader  DeliveryHeader  `xml:"deliveryHeader"`
	RawDataDelivery RawDataDelivery `xml:"rawDataDelivery"`
}

type DeliveryHeader struct {
	SenderID          string `xml:"senderId"`
	MessageID         string `xml:"messageId"`
	MessageDate       string `xml:"messageDate"`
	ProductVersion    string `xml:"sendingApplication>productVersion,omitempty"`
	DeclarationLocale string `xml:"declarationLocale,omitempty"`
}

type RawDataDelivery struct {
	RawData RawData `xml:"rawData"`
}

// RawData is the ballot level content of the delivery, per counting
// circle.
type RawData struct {
	ContestIdentification string                  `xml:"contestIdentification"`
	CountingCircles       []CountingCircleRawData `xml:"countingCircleRawData"`
}

type CountingCircleRawData struct {
	CountingCircleID string                       `xml:"countingCircleId"`
	Votes            []VoteRawData                `xml:"voteRawData"`
	ElectionGroups   []ElectionGroupBallotRawData `xml:"electionGroupBallotRawData"`
}

type VoteRawData struct {
	VoteIdentification string          `xml:"voteIdentification"`
	Ballots            []BallotRawData `xml:"ballotRawData"`
}

type BallotRawData struct {
	BallotIdentification string         `xml:"ballotIdentification"`
	BallotsCasted        []BallotCasted `xml:"ballotCasted"`
}

type BallotCasted struct {
	BallotCastedNumber int               `xml:"ballotCastedNumber,omitempty"`
	Questions          []QuestionRawData `xml:"questionRawData"`
}

type QuestionRawData struct {
	QuestionIdentification string `xml:"questionIdentification"`
	AnswerIdentification   string `xml:"casted>answerOptionIdentification"`
}

type ElectionGroupBallotRawData struct {
	ElectionGroupIdentification string            `xml:"electionGroupIdentification"`
	Elections                   []ElectionRawData `xml:"electionRawData"`
}

type ElectionRawData struct {
	ElectionIdentification string           `xml:"electionIdentification"`
	Ballots                []ElectionBallot `xml:"ballotRawData"`
}

type ElectionBallot struct {
	ListIdentification string           `xml:"listRawData>listIdentification,omitempty"`
	Positions          []BallotPosition `xml:"ballotPosition"`
}

// BallotPosition is one line of an election ballot: a candidate, a write
// in or an empty line.
type BallotPosition struct {
	CandidateIdentification string `xml:"candidate>candidateIdentification,omitempty"`
	WriteIn                 string `xml:"candidate>writeIn,omitempty"`
	IsEmpty                 bool   `xml:"isEmpty,omitempty"`
}

// ParseDelivery decodes an eCH-0222 document.
func ParseDelivery(b []byte) (*Delivery, error) {
	d := &Delivery{}
	if err := xml.Unmarshal(b, d); err != nil {
		return nil, fmt.Errorf("cannot decode eCH-0222 delivery: %w", err)
	}
	if d.RawDataDelivery.RawData.ContestIdentification == "" {
		return nil, fmt.Errorf("eCH-0222 delivery has no contestIdentification")
	}
	return d, nil
}

// Marshal encodes the delivery with the eCH-0222 namespace.
func (d *Delivery) Marshal() ([]byte, error) {
	d.XMLName = xml.Name{Space: Namespace, Local: "delivery"}
	b, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}
