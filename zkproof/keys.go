package zkproof

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// GenerateKnowledgeKeypair is a convenience constructor for the
// FiatShamirOperator's Knowledge statement: returns a 32-byte secret
// scalar and its 33-byte compressed public key.
func GenerateKnowledgeKeypair() (pub, priv []byte, err error) {
	sk, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, err
	}
	priv = sk.Serialize()
	pub = sk.PubKey().SerializeCompressed()
	return pub, priv, nil
}
