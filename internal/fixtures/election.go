package fixtures

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"
	"testing/fstest"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/random"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/ech0222"
	"github.com/thechriswalker/go-evote-verifier/payloads"
)

const (
	ElectionEventID = "ee-0001"
	Seed            = "Post_E2E_DEV"
	Nodes           = payloads.ControlComponents
	// Selections is the number of questions, each voter answers all of them.
	Selections = 2
)

// BallotBox describes one ballot box of the fixture election.
type BallotBox struct {
	ID                    string
	VerificationCardSetID string
	Cards                 int
	Votes                 int
}

// BallotBoxes are the ballot boxes of the fixture election. The second has
// a single vote, so its shuffles are padded.
var BallotBoxes = []BallotBox{
	{ID: "bb-0001", VerificationCardSetID: "vcs-0001", Cards: 4, Votes: 3},
	{ID: "bb-0002", VerificationCardSetID: "vcs-0002", Cards: 2, Votes: 1},
}

// PrimesMappingTable encodes two yes/no questions.
func PrimesMappingTable() payloads.PrimesMappingTable {
	return payloads.PrimesMappingTable{PTable: []payloads.PrimesMappingTableEntry{
		{ActualVotingOption: "q1|yes", EncodedVotingOption: 11, SemanticInformation: "Question 1: yes", CorrectnessInformation: "q1"},
		{ActualVotingOption: "q1|no", EncodedVotingOption: 17, SemanticInformation: "Question 1: no", CorrectnessInformation: "q1"},
		{ActualVotingOption: "q2|yes", EncodedVotingOption: 29, SemanticInformation: "Question 2: yes", CorrectnessInformation: "q2"},
		{ActualVotingOption: "q2|no", EncodedVotingOption: 31, SemanticInformation: "Question 2: no", CorrectnessInformation: "q2"},
	}}
}

// Election is a complete and honest election event held in memory. The
// files must not be modified, use a directory.Mock to change them.
type Election struct {
	Group *elgamal.EncryptionGroup
	Files fstest.MapFS

	ElectoralBoard *KeyPair
	CCM            []*KeyPair
	CCR            []*KeyPair
	ElectionKey    []*big.Int
}

// Directory reads the election through a fresh directory.
func (e *Election) Directory() *directory.FS {
	return directory.New(e.Files)
}

var (
	electionOnce sync.Once
	election     *Election
)

// NewElection returns the shared fixture election, built on first use.
func NewElection() *Election {
	electionOnce.Do(func() {
		var err error
		election, err = buildElection()
		if err != nil {
			panic(err)
		}
	})
	return election
}

func sign(p payloads.Signed) *payloads.Signature {
	return payloads.NewSignature(SignerFor(p.Authority()).Sign(p.HashableMessage(), p.SignatureContext()))
}

type builder struct {
	s     *elgamal.EncryptionGroup
	e     *Election
	files fstest.MapFS
	eb    *KeyPair
	pkCCR []*big.Int
	cards map[string][]*KeyPair
	votes map[string]*payloads.TallyComponentVotesPayload
}

func (b *builder) put(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	b.files[name] = &fstest.MapFile{Data: data, Mode: 0o644}
	return nil
}

func productKey(s *elgamal.EncryptionGroup, keys ...[]*big.Int) []*big.Int {
	out := make([]*big.Int, len(keys[0]))
	for i := range out {
		out[i] = big.NewInt(1)
		for _, k := range keys {
			out[i] = s.Mul(out[i], k[i])
		}
	}
	return out
}

func buildElection() (*Election, error) {
	s := Group()
	b := &builder{
		s:     s,
		e:     &Election{Group: s},
		files: fstest.MapFS{},
		cards: map[string][]*KeyPair{},
		votes: map[string]*payloads.TallyComponentVotesPayload{},
	}
	b.e.Files = b.files
	steps := []func() error{
		b.encryptionParameters,
		b.electionEventContext,
		b.publicKeys,
		b.verificationCardSets,
		b.ballotBoxes,
		b.ech0222,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return b.e, nil
}

func (b *builder) encryptionParameters() error {
	p := &payloads.EncryptionParametersPayload{
		EncryptionGroup: b.s,
		Seed:            Seed,
		SmallPrimes:     SmallPrimes,
	}
	p.Signature = sign(p)
	return b.put(path.Join(directory.SetupDir, directory.EncryptionParametersFile), p)
}

func (b *builder) electionEventContext() error {
	var contexts []payloads.VerificationCardSetContext
	for i, bb := range BallotBoxes {
		contexts = append(contexts, payloads.VerificationCardSetContext{
			VerificationCardSetID:    bb.VerificationCardSetID,
			VerificationCardSetAlias: fmt.Sprintf("Voters %d", i+1),
			BallotBoxID:              bb.ID,
			BallotBoxStartTime:       "2026-09-01T08:00:00",
			BallotBoxFinishTime:      "2026-09-27T12:00:00",
			NumberOfVotingCards:      bb.Cards,
			GracePeriod:              900,
			PrimesMappingTable:       PrimesMappingTable(),
		})
	}
	p := &payloads.ElectionEventContextPayload{
		EncryptionGroup: b.s,
		Seed:            Seed,
		ElectionEventContext: payloads.ElectionEventContext{
			ElectionEventID:                ElectionEventID,
			ElectionEventAlias:             "Test Election",
			ElectionEventDescription:       "Two questions",
			VerificationCardSetContexts:    contexts,
			StartTime:                      "2026-09-01T08:00:00",
			FinishTime:                     "2026-09-27T12:00:00",
			MaximumNumberOfVotingOptions:   4,
			MaximumNumberOfSelections:      Selections,
			MaximumNumberOfWriteInsPlusOne: 1,
		},
	}
	p.Signature = sign(p)
	return b.put(path.Join(directory.SetupDir, directory.ElectionEventContextFile), p)
}

func (b *builder) publicKeys() error {
	s := b.s
	var combined []payloads.ControlComponentPublicKeys
	var ccm [][]*big.Int
	for j := 1; j <= Nodes; j++ {
		ccr, ccmj := NewKeyPair(s, Selections), NewKeyPair(s, 1)
		b.e.CCR = append(b.e.CCR, ccr)
		b.e.CCM = append(b.e.CCM, ccmj)
		ccm = append(ccm, ccmj.Public)

		aux := payloads.ControlComponentKeyAux(ElectionEventID, j)
		keys := payloads.ControlComponentPublicKeys{
			NodeID:                                   j,
			CcrjChoiceReturnCodesEncryptionPublicKey: ccr.Public,
			CcmjElectionPublicKey:                    ccmj.Public,
		}
		for _, x := range ccr.Secret {
			keys.CcrjSchnorrProofs = append(keys.CcrjSchnorrProofs, ProveSchnorr(s, x, aux...))
		}
		for _, x := range ccmj.Secret {
			keys.CcmjSchnorrProofs = append(keys.CcmjSchnorrProofs, ProveSchnorr(s, x, aux...))
		}
		combined = append(combined, keys)

		p := &payloads.ControlComponentPublicKeysPayload{
			EncryptionGroup:            s,
			ElectionEventID:            ElectionEventID,
			ControlComponentPublicKeys: keys,
		}
		p.Signature = sign(p)
		name := fmt.Sprintf("%s%d.json", directory.ControlComponentPublicKeysPrefix, j)
		if err := b.put(path.Join(directory.SetupDir, name), p); err != nil {
			return err
		}
	}

	b.eb = NewKeyPair(s, 1)
	b.e.ElectoralBoard = b.eb
	b.e.ElectionKey = productKey(s, append(ccm, b.eb.Public)...)
	ccrKeys := make([][]*big.Int, len(b.e.CCR))
	for i, k := range b.e.CCR {
		ccrKeys[i] = k.Public
	}
	b.pkCCR = productKey(s, ccrKeys...)

	var ebProofs []*elgamal.Proof
	for _, x := range b.eb.Secret {
		ebProofs = append(ebProofs, ProveSchnorr(s, x, payloads.ElectoralBoardKeyAux(ElectionEventID)...))
	}
	p := &payloads.SetupComponentPublicKeysPayload{
		EncryptionGroup: s,
		ElectionEventID: ElectionEventID,
		SetupComponentPublicKeys: payloads.SetupComponentPublicKeys{
			CombinedControlComponentPublicKeys:   combined,
			ElectoralBoardPublicKey:              b.eb.Public,
			ElectoralBoardSchnorrProofs:          ebProofs,
			ElectionPublicKey:                    b.e.ElectionKey,
			ChoiceReturnCodesEncryptionPublicKey: b.pkCCR,
		},
	}
	p.Signature = sign(p)
	return b.put(path.Join(directory.SetupDir, directory.SetupComponentPublicKeysFile), p)
}

func cardID(vcs string, i int) string {
	return fmt.Sprintf("%s-vc-%04d", vcs, i)
}

func (b *builder) randomMembers(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = b.s.Exp(b.s.G, random.Int(b.s.Q))
	}
	return out
}

func (b *builder) verificationCardSets() error {
	s := b.s
	for _, bb := range BallotBoxes {
		vcs := bb.VerificationCardSetID
		dir := path.Join(directory.VerificationCardSetDir, vcs)

		tally := &payloads.SetupComponentTallyDataPayload{
			ElectionEventID:       ElectionEventID,
			VerificationCardSetID: vcs,
			BallotBoxDefaultTitle: "Ballot box " + bb.ID,
			EncryptionGroup:       s,
		}
		verification := &payloads.SetupComponentVerificationDataPayload{
			ElectionEventID:                   ElectionEventID,
			VerificationCardSetID:             vcs,
			PartialChoiceReturnCodesAllowList: []string{"allow-1", "allow-2"},
			ChunkID:                           0,
			EncryptionGroup:                   s,
		}
		for i := 0; i < bb.Cards; i++ {
			card := NewKeyPair(s, 1)
			b.cards[vcs] = append(b.cards[vcs], card)
			id := cardID(vcs, i)
			tally.VerificationCardIDs = append(tally.VerificationCardIDs, id)
			tally.VerificationCardPublicKeys = append(tally.VerificationCardPublicKeys, card.Public)

			ck, err := s.Encrypt(b.randomMembers(1), random.Int(s.Q), b.pkCCR)
			if err != nil {
				return err
			}
			pcc, err := s.Encrypt(b.randomMembers(Selections), random.Int(s.Q), b.pkCCR)
			if err != nil {
				return err
			}
			verification.SetupComponentVerificationData = append(verification.SetupComponentVerificationData, payloads.SetupComponentVerificationData{
				VerificationCardID:                             id,
				EncryptedHashedSquaredConfirmationKey:          ck,
				EncryptedHashedSquaredPartialChoiceReturnCodes: pcc,
				VerificationCardPublicKey:                      card.Public,
			})
		}
		tally.Signature = sign(tally)
		if err := b.put(path.Join(dir, directory.SetupComponentTallyDataFile), tally); err != nil {
			return err
		}
		verification.Signature = sign(verification)
		if err := b.put(path.Join(dir, directory.SetupComponentVerificationPrefix+"0.json"), verification); err != nil {
			return err
		}

		shares := payloads.ControlComponentCodeSharesPayloads{}
		for j := 1; j <= Nodes; j++ {
			p := &payloads.ControlComponentCodeSharesPayload{
				ElectionEventID:       ElectionEventID,
				VerificationCardSetID: vcs,
				ChunkID:               0,
				EncryptionGroup:       s,
				NodeID:                j,
			}
			for _, d := range verification.SetupComponentVerificationData {
				aux := payloads.CodeSharesAux(ElectionEventID, vcs, d.VerificationCardID, j)
				pcc := d.EncryptedHashedSquaredPartialChoiceReturnCodes
				pccImages, pccProof := ProveExponentiation(s, payloads.ExponentiationBases(s, pcc, pcc.Size()), random.Int(s.Q), aux...)
				ck := d.EncryptedHashedSquaredConfirmationKey
				ckImages, ckProof := ProveExponentiation(s, payloads.ExponentiationBases(s, ck, ck.Size()), random.Int(s.Q), aux...)
				p.ControlComponentCodeShares = append(p.ControlComponentCodeShares, payloads.ControlComponentCodeShare{
					VerificationCardID:                                  d.VerificationCardID,
					VoterChoiceReturnCodeGenerationPublicKey:            crypto.BigIntSlice{pccImages[0]},
					VoterVoteCastReturnCodeGenerationPublicKey:          crypto.BigIntSlice{ckImages[0]},
					ExponentiatedEncryptedPartialChoiceReturnCodes:      &elgamal.Ciphertext{Gamma: pccImages[1], Phis: pccImages[2:]},
					EncryptedPartialChoiceReturnCodeExponentiationProof: pccProof,
					ExponentiatedEncryptedConfirmationKey:               &elgamal.Ciphertext{Gamma: ckImages[1], Phis: ckImages[2:]},
					EncryptedConfirmationKeyExponentiationProof:         ckProof,
				})
			}
			p.Signature = sign(p)
			shares = append(shares, p)
		}
		if err := b.put(path.Join(dir, directory.ControlComponentCodeSharesPrefix+"0.json"), shares); err != nil {
			return err
		}
	}
	return nil
}

// selection is the choice of the i-th voter: yes/yes or no/no.
func selection(i int) []uint64 {
	if i%2 == 0 {
		return []uint64{11, 29}
	}
	return []uint64{17, 31}
}

func (b *builder) vote(ids payloads.ContextIDs, card *KeyPair, primes []uint64) (payloads.EncryptedVerifiableVote, error) {
	s := b.s
	k := card.Secret[0]
	m := big.NewInt(1)
	pccs := make([]*big.Int, len(primes))
	for i, pr := range primes {
		m = s.Mul(m, new(big.Int).SetUint64(pr))
		pccs[i] = s.Exp(new(big.Int).SetUint64(pr), k)
	}
	r := random.Int(s.Q)
	e1, err := s.Encrypt([]*big.Int{m}, r, b.e.ElectionKey)
	if err != nil {
		return payloads.EncryptedVerifiableVote{}, err
	}
	aux := payloads.VoteAux(ids)
	images, expProof := ProveExponentiation(s, payloads.ExponentiationBases(s, e1, 1), k, aux...)
	e1Tilde := &elgamal.Ciphertext{Gamma: images[1], Phis: crypto.BigIntSlice{images[2]}}

	r2 := random.Int(s.Q)
	e2, err := s.Encrypt(pccs, r2, b.pkCCR)
	if err != nil {
		return payloads.EncryptedVerifiableVote{}, err
	}
	e2Compressed := &elgamal.Ciphertext{Gamma: e2.Gamma, Phis: crypto.BigIntSlice{s.Product(e2.Phis)}}
	peProof := ProvePlaintextEquality(s, e1Tilde, e2Compressed,
		b.e.ElectionKey[0], s.Product(b.pkCCR), s.MulExponents(r, k), r2, aux...)

	return payloads.EncryptedVerifiableVote{
		ContextIDs:                        ids,
		EncryptedVote:                     e1,
		ExponentiatedEncryptedVote:        e1Tilde,
		EncryptedPartialChoiceReturnCodes: e2,
		ExponentiationProof:               expProof,
		PlaintextEqualityProof:            peProof,
	}, nil
}

func (b *builder) ballotBoxes() error {
	s := b.s
	for _, bb := range BallotBoxes {
		dir := path.Join(directory.BallotBoxDir, bb.ID)
		var votes []payloads.EncryptedVerifiableVote
		for i := 0; i < bb.Votes; i++ {
			ids := payloads.ContextIDs{
				ElectionEventID:       ElectionEventID,
				VerificationCardSetID: bb.VerificationCardSetID,
				VerificationCardID:    cardID(bb.VerificationCardSetID, i),
			}
			v, err := b.vote(ids, b.cards[bb.VerificationCardSetID][i], selection(i))
			if err != nil {
				return err
			}
			votes = append(votes, v)
		}
		var input []*elgamal.Ciphertext
		for j := 1; j <= Nodes; j++ {
			p := &payloads.ControlComponentBallotBoxPayload{
				EncryptionGroup:         s,
				ElectionEventID:         ElectionEventID,
				BallotBoxID:             bb.ID,
				NodeID:                  j,
				ConfirmedEncryptedVotes: votes,
			}
			p.Signature = sign(p)
			if err := b.put(path.Join(dir, fmt.Sprintf("%s%d.json", directory.ControlComponentBallotBoxPrefix, j)), p); err != nil {
				return err
			}
			input = p.EncryptedVotes()
		}
		if len(input) < 2 {
			input = append(input, elgamal.NeutralCiphertext(1), elgamal.NeutralCiphertext(1))
		}

		for j := 1; j <= Nodes; j++ {
			keys := [][]*big.Int{b.eb.Public}
			for _, k := range b.e.CCM[j-1:] {
				keys = append(keys, k.Public)
			}
			shuffled, arg, err := Shuffle(s, productKey(s, keys...), input)
			if err != nil {
				return err
			}
			dec := payloads.VerifiableDecryptions{}
			for _, ct := range shuffled {
				m, proof := ProveDecryption(s, ct, b.e.CCM[j-1].Secret, payloads.MixDecryptAux(ElectionEventID, bb.ID, j)...)
				dec.Ciphertexts = append(dec.Ciphertexts, &elgamal.Ciphertext{Gamma: ct.Gamma, Phis: m})
				dec.DecryptionProofs = append(dec.DecryptionProofs, proof)
			}
			p := &payloads.ControlComponentShufflePayload{
				EncryptionGroup:       s,
				ElectionEventID:       ElectionEventID,
				BallotBoxID:           bb.ID,
				NodeID:                j,
				VerifiableShuffle:     payloads.VerifiableShuffle{ShuffledCiphertexts: shuffled, ShuffleArgument: arg},
				VerifiableDecryptions: dec,
			}
			p.Signature = sign(p)
			if err := b.put(path.Join(dir, fmt.Sprintf("%s%d.json", directory.ControlComponentShufflePrefix, j)), p); err != nil {
				return err
			}
			input = dec.Ciphertexts
		}

		shuffled, arg, err := Shuffle(s, b.eb.Public, input)
		if err != nil {
			return err
		}
		plain := payloads.VerifiablePlaintextDecryption{}
		for _, ct := range shuffled {
			m, proof := ProveDecryption(s, ct, b.eb.Secret, payloads.TallyDecryptAux(ElectionEventID, bb.ID)...)
			plain.DecryptedVotes = append(plain.DecryptedVotes, payloads.DecryptedVote{Message: m})
			plain.DecryptionProofs = append(plain.DecryptionProofs, proof)
		}
		shuffle := &payloads.TallyComponentShufflePayload{
			EncryptionGroup:               s,
			ElectionEventID:               ElectionEventID,
			BallotBoxID:                   bb.ID,
			VerifiableShuffle:             payloads.VerifiableShuffle{ShuffledCiphertexts: shuffled, ShuffleArgument: arg},
			VerifiablePlaintextDecryption: plain,
		}
		shuffle.Signature = sign(shuffle)
		if err := b.put(path.Join(dir, directory.TallyComponentShuffleFile), shuffle); err != nil {
			return err
		}

		votesPayload, err := decodeVotes(s, bb.ID, shuffle.DecryptedMessages())
		if err != nil {
			return err
		}
		votesPayload.Signature = sign(votesPayload)
		b.votes[bb.ID] = votesPayload
		if err := b.put(path.Join(dir, directory.TallyComponentVotesFile), votesPayload); err != nil {
			return err
		}
	}
	return nil
}

// decodeVotes factorises the plaintexts over the primes mapping table,
// dropping the padding.
func decodeVotes(s *elgamal.EncryptionGroup, bbID string, messages []crypto.BigIntSlice) (*payloads.TallyComponentVotesPayload, error) {
	table := PrimesMappingTable()
	p := &payloads.TallyComponentVotesPayload{
		ElectionEventID: ElectionEventID,
		BallotID:        "ballot-0001",
		BallotBoxID:     bbID,
		EncryptionGroup: s,
	}
	one := big.NewInt(1)
	for _, m := range messages {
		if m[0].Cmp(one) == 0 {
			continue
		}
		rest := new(big.Int).Set(m[0])
		var primes []uint64
		var options []string
		for _, e := range table.PTable {
			pr := new(big.Int).SetUint64(e.EncodedVotingOption)
			if new(big.Int).Rem(rest, pr).Sign() == 0 {
				rest.Quo(rest, pr)
				primes = append(primes, e.EncodedVotingOption)
			}
		}
		if rest.Cmp(one) != 0 {
			return nil, fmt.Errorf("plaintext %s does not factorise", m[0])
		}
		sort.Slice(primes, func(i, j int) bool { return primes[i] < primes[j] })
		for _, pr := range primes {
			o, _ := table.ActualVotingOption(pr)
			options = append(options, o)
		}
		p.Votes = append(p.Votes, primes)
		p.ActualSelectedVotingOptions = append(p.ActualSelectedVotingOptions, options)
		p.DecodedWriteInVotes = append(p.DecodedWriteInVotes, []string{})
	}
	return p, nil
}

// Configuration places both questions in one vote and each ballot box in
// its own counting circle.
func Configuration() *ech0222.Configuration {
	cfg := &ech0222.Configuration{ContestIdentification: "contest-0001"}
	for i, bb := range BallotBoxes {
		cfg.CountingCircles = append(cfg.CountingCircles, ech0222.CountingCircle{
			ID:           fmt.Sprintf("cc-%04d", i+1),
			BallotBoxIDs: []string{bb.ID},
		})
	}
	for _, e := range PrimesMappingTable().PTable {
		cfg.Options = append(cfg.Options, ech0222.Option{
			ActualVotingOption:     e.ActualVotingOption,
			VoteIdentification:     "vote-0001",
			BallotIdentification:   "ballot-0001",
			QuestionIdentification: e.CorrectnessInformation,
			AnswerIdentification:   e.ActualVotingOption[len(e.CorrectnessInformation)+1:],
		})
	}
	return cfg
}

func (b *builder) ech0222() error {
	cfg := Configuration()
	if err := b.put(path.Join(directory.TallyDir, directory.ElectionConfigurationFile), cfg); err != nil {
		return err
	}
	var boxes []ech0222.BallotBox
	for _, bb := range BallotBoxes {
		boxes = append(boxes, ech0222.BallotBox{ID: bb.ID, Votes: b.votes[bb.ID]})
	}
	raw, err := ech0222.Calculate(cfg, boxes)
	if err != nil {
		return err
	}
	d := &ech0222.Delivery{
		DeliveryHeader: ech0222.DeliveryHeader{
			SenderID:    "tally-component",
			MessageID:   "msg-0001",
			MessageDate: "2026-09-27T14:00:00",
		},
		RawDataDelivery: ech0222.RawDataDelivery{RawData: *raw},
	}
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	b.files[path.Join(directory.TallyDir, directory.ECH0222File)] = &fstest.MapFile{Data: data, Mode: 0o644}
	return nil
}
