// Package cryptox seals local exports before they leave the device.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"golang.org/x/crypto/argon2"
)

var (
	ErrBadBackup     = errors.New("malformed backup blob")
	ErrWrongPassword = errors.New("backup could not be decrypted")
)

var backupMagic = []byte("DTB1")

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

// DeriveKey stretches a passphrase into a 256-bit AES key with argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// SealBackup encrypts plaintext with a key derived from passphrase.
//
// Layout: magic(4) | salt(16) | nonce(12) | AES-GCM ciphertext.
// The header is authenticated as additional data, so tampering with the
// salt or nonce fails on open.
func SealBackup(plaintext, passphrase []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(saltSize)
	nonce := common.GenerateRandByteArray(nonceSize)

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 0, len(backupMagic)+saltSize+nonceSize)
	header = append(header, backupMagic...)
	header = append(header, salt...)
	header = append(header, nonce...)

	return aead.Seal(header, nonce, plaintext, header), nil
}

// OpenBackup reverses SealBackup.
func OpenBackup(blob, passphrase []byte) ([]byte, error) {
	headerSize := len(backupMagic) + saltSize + nonceSize
	if len(blob) < headerSize || !bytes.Equal(blob[:len(backupMagic)], backupMagic) {
		return nil, ErrBadBackup
	}

	header := blob[:headerSize]
	salt := header[len(backupMagic) : len(backupMagic)+saltSize]
	nonce := header[len(backupMagic)+saltSize:]

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, blob[headerSize:], header)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
