package elgamal

import (
	"encoding/json"
	"fmt"
	"reflect"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto"
)

// The payloads encode integers as "0x" prefixed hex strings, which
// encoding/json cannot do for *big.Int, so the types here marshal
// themselves explicitly.
//
// Unmarshalling never validates group membership, that is the job of the
// verifications.

/////////////////// Helpers ///////////////////

func bigIntAtKey(k string, m map[string]interface{}) (*big.Int, error) {
	v, ok := m[k]
	if !ok || v == nil {
		return nil, fmt.Errorf("no field '%s' in JSON object", k)
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("invalid type at field '%s' (expecting string, got %s)", k, reflect.TypeOf(v).Kind())
	}
	n, err := crypto.BigIntFromJSON(s)
	if err != nil {
		return nil, fmt.Errorf("field '%s': %w", k, err)
	}
	return n, nil
}

func bigIntsAtKey(k string, m map[string]interface{}) (crypto.BigIntSlice, error) {
	v, ok := m[k]
	if !ok || v == nil {
		return nil, fmt.Errorf("no field '%s' in JSON object", k)
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid type at field '%s' (expecting array, got %s)", k, reflect.TypeOf(v).Kind())
	}
	out := make(crypto.BigIntSlice, len(arr))
	for i, x := range arr {
		s, ok := x.(string)
		if !ok {
			return nil, fmt.Errorf("invalid type at field '%s[%d]' (expecting string)", k, i)
		}
		n, err := crypto.BigIntFromJSON(s)
		if err != nil {
			return nil, fmt.Errorf("field '%s[%d]': %w", k, i, err)
		}
		out[i] = n
	}
	return out, nil
}

func getMap(b []byte) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	err := json.Unmarshal(b, &m)
	return m, err
}

/////////////////// type EncryptionGroup ///////////////////

func (s *EncryptionGroup) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"p": crypto.BigIntToJSON(s.P),
		"q": crypto.BigIntToJSON(s.Q),
		"g": crypto.BigIntToJSON(s.G),
	}
}

func (s *EncryptionGroup) fromJSON(m map[string]interface{}) (err error) {
	s.P, err = bigIntAtKey("p", m)
	if err != nil {
		return err
	}
	s.Q, err = bigIntAtKey("q", m)
	if err != nil {
		return err
	}
	s.G, err = bigIntAtKey("g", m)
	return err
}

func (s *EncryptionGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toJSON())
}

func (s *EncryptionGroup) UnmarshalJSON(b []byte) error {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	return s.fromJSON(m)
}

/////////////////// type Ciphertext ///////////////////

func (ct *Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"gamma": crypto.BigIntToJSON(ct.Gamma),
		"phis":  ct.Phis,
	})
}

func (ct *Ciphertext) UnmarshalJSON(b []byte) (err error) {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	ct.Gamma, err = bigIntAtKey("gamma", m)
	if err != nil {
		return err
	}
	ct.Phis, err = bigIntsAtKey("phis", m)
	if err != nil {
		return err
	}
	if len(ct.Phis) == 0 {
		return fmt.Errorf("ciphertext without phis")
	}
	return nil
}

/////////////////// type Proof ///////////////////

func (p *Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"e": crypto.BigIntToJSON(p.E),
		"z": crypto.BigIntToJSON(p.Z),
	})
}

func (p *Proof) UnmarshalJSON(b []byte) (err error) {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	p.E, err = bigIntAtKey("e", m)
	if err != nil {
		return err
	}
	p.Z, err = bigIntAtKey("z", m)
	return err
}

/////////////////// type VectorProof ///////////////////

func (p *VectorProof) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"e": crypto.BigIntToJSON(p.E),
		"z": p.Z,
	})
}

func (p *VectorProof) UnmarshalJSON(b []byte) (err error) {
	m, err := getMap(b)
	if err != nil {
		return err
	}
	p.E, err = bigIntAtKey("e", m)
	if err != nil {
		return err
	}
	p.Z, err = bigIntsAtKey("z", m)
	return err
}
