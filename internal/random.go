package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

type OpRef [12]byte

func NewOpRef() (OpRef, error) {
	var ref OpRef
	_, err := rand.Read(ref[:])
	return ref, err
}

func (r OpRef) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(r[:])
}

func ParseOpRef(opRef string) (OpRef, error) {
	var ref OpRef

	raw, err := base64.RawURLEncoding.DecodeString(opRef)
	if err != nil {
		return ref, err
	}
	if len(raw) != len(ref) {
		return ref, errors.New("invalid op ref size")
	}

	copy(ref[:], raw)
	return ref, nil
}
