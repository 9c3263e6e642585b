package storage

import (
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/medigenie/internal/cryptox"
)

// Codec turns state values into stored bytes and back.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Decode(data []byte, v any) error {
	if cryptox.IsSealed(data) {
		return errors.New("state is sealed; a passphrase is required")
	}
	return json.Unmarshal(data, v)
}

// SealedCodec encrypts the JSON form with a passphrase-derived key.
// Unsealed values written before sealing was enabled are still readable.
type SealedCodec struct {
	sealer *cryptox.Sealer
}

func NewSealedCodec(passphrase string) *SealedCodec {
	return &SealedCodec{sealer: cryptox.NewSealer(passphrase)}
}

func (c *SealedCodec) Encode(v any) ([]byte, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.sealer.Seal(plain)
}

func (c *SealedCodec) Decode(data []byte, v any) error {
	if !cryptox.IsSealed(data) {
		return json.Unmarshal(data, v)
	}
	plain, err := c.sealer.Open(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(plain, v)
}

// NewCodec returns a SealedCodec when passphrase is set, JSONCodec otherwise.
func NewCodec(passphrase string) Codec {
	if passphrase == "" {
		return JSONCodec{}
	}
	return NewSealedCodec(passphrase)
}
