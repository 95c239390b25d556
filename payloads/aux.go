package payloads

import "github.com/thechriswalker/go-evote-verifier/crypto/hashing"

// The auxiliary information bound into the proofs of the payloads.

// ControlComponentKeyAux binds the Schnorr proofs of the keys of node j.
func ControlComponentKeyAux(eeID string, nodeID int) []hashing.HashableMessage {
	return []hashing.HashableMessage{hashing.String(eeID), hashing.Uint(uint64(nodeID))}
}

// ElectoralBoardKeyAux binds the Schnorr proofs of the electoral board key.
func ElectoralBoardKeyAux(eeID string) []hashing.HashableMessage {
	return []hashing.HashableMessage{hashing.String(eeID), hashing.String("SetupTallyEB")}
}

// CodeSharesAux binds the exponentiation proofs of the code shares of a
// verification card computed by node j.
func CodeSharesAux(eeID, vcsID, vcID string, nodeID int) []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String(eeID), hashing.String(vcsID), hashing.String(vcID), hashing.Uint(uint64(nodeID)),
	}
}

// VoteAux binds the proofs of the voting client to the vote context.
func VoteAux(ids ContextIDs) []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String(ids.ElectionEventID), hashing.String(ids.VerificationCardSetID), hashing.String(ids.VerificationCardID),
	}
}

// MixDecryptAux binds the partial decryption proofs of node j.
func MixDecryptAux(eeID, bbID string, nodeID int) []hashing.HashableMessage {
	return []hashing.HashableMessage{hashing.String(eeID), hashing.String(bbID), hashing.Uint(uint64(nodeID))}
}

// TallyDecryptAux binds the final decryption proofs.
func TallyDecryptAux(eeID, bbID string) []hashing.HashableMessage {
	return []hashing.HashableMessage{hashing.String(eeID), hashing.String(bbID), hashing.String("MixDecOffline")}
}
