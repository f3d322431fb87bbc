package models

import (
	"encoding/base64"
	"encoding/json"
)

// SchemaVersion is the current EncryptedSecret layout.
const SchemaVersion = 1

// IVSize is the AES-GCM nonce length.
const IVSize = 12

// SecretSize is the length of a root secret.
const SecretSize = 32

// EncryptedSecret wraps the root secret at rest.
type EncryptedSecret struct {
	Ciphertext    []byte `json:"ciphertext"`
	IV            []byte `json:"iv"`
	SchemaVersion int    `json:"schemaVersion"`
}

// Marshal encodes the record for storage. []byte fields encode as base64.
func (e *EncryptedSecret) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEncrypted decodes a stored record previously accepted by IsEncrypted.
func UnmarshalEncrypted(raw []byte) (*EncryptedSecret, error) {
	var rec EncryptedSecret
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// IsEncrypted reports whether raw has the wrapped-ciphertext shape: a JSON
// object with a non-empty base64 ciphertext and a 12-byte base64 iv. Anything
// else, including a bare legacy hex string, is not encrypted.
func IsEncrypted(raw []byte) bool {
	var probe struct {
		Ciphertext *string `json:"ciphertext"`
		IV         *string `json:"iv"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	if probe.Ciphertext == nil || probe.IV == nil {
		return false
	}
	ct, err := base64.StdEncoding.DecodeString(*probe.Ciphertext)
	if err != nil || len(ct) == 0 {
		return false
	}
	iv, err := base64.StdEncoding.DecodeString(*probe.IV)
	return err == nil && len(iv) == IVSize
}
