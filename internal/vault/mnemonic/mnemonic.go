// Package mnemonic maps root secrets to BIP-39 English phrases and back.
// 16-byte secrets use 12 words, 32-byte secrets use 24.
package mnemonic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"

	dErrors "zkvault/pkg/domain-errors"
)

// Kind classifies a phrase or secret rejection.
type Kind string

const (
	KindInvalidLength       Kind = "InvalidLength"
	KindUnknownWord         Kind = "UnknownWord"
	KindBadChecksum         Kind = "BadChecksum"
	KindInvalidSecretLength Kind = "InvalidSecretLength"
)

// MnemonicError never includes the offending words.
type MnemonicError struct {
	Kind  Kind
	Index int
}

func (e *MnemonicError) Error() string {
	switch e.Kind {
	case KindUnknownWord:
		return fmt.Sprintf("mnemonic: word %d is not in the word list", e.Index+1)
	case KindInvalidLength:
		return "mnemonic: phrase must have 12 or 24 words"
	case KindBadChecksum:
		return "mnemonic: checksum mismatch"
	default:
		return "mnemonic: secret must be 16 or 32 bytes"
	}
}

// Code maps every mnemonic failure to a validation error.
func (e *MnemonicError) Code() dErrors.Code {
	return dErrors.CodeValidation
}

// KindOf extracts the Kind from err, or "".
func KindOf(err error) Kind {
	var me *MnemonicError
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}

var wordIndex = func() map[string]int {
	idx := make(map[string]int, len(wordlists.English))
	for i, w := range wordlists.English {
		idx[w] = i
	}
	return idx
}()

// entropy bytes by phrase length
var phraseEntropy = map[int]int{12: 16, 24: 32}

// SecretToWords encodes a 16- or 32-byte secret.
func SecretToWords(secret []byte) ([]string, error) {
	if len(secret) != 16 && len(secret) != 32 {
		return nil, &MnemonicError{Kind: KindInvalidSecretLength}
	}
	phrase, err := bip39.NewMnemonic(secret)
	if err != nil {
		return nil, &MnemonicError{Kind: KindInvalidSecretLength}
	}
	return strings.Fields(phrase), nil
}

// WordsToSecret decodes a phrase. Words are matched case-insensitively.
func WordsToSecret(words []string) ([]byte, error) {
	size, ok := phraseEntropy[len(words)]
	if !ok {
		return nil, &MnemonicError{Kind: KindInvalidLength}
	}
	normalized := make([]string, len(words))
	for i, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if _, known := wordIndex[w]; !known {
			return nil, &MnemonicError{Kind: KindUnknownWord, Index: i}
		}
		normalized[i] = w
	}

	entropy, err := bip39.EntropyFromMnemonic(strings.Join(normalized, " "))
	if err != nil {
		return nil, &MnemonicError{Kind: KindBadChecksum}
	}
	if len(entropy) < size {
		padded := make([]byte, size)
		copy(padded[size-len(entropy):], entropy)
		entropy = padded
	}
	return entropy, nil
}
