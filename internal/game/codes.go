package game

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	RoomCodeLength   = 6
)

// NewRoomCode draws RoomCodeLength characters from RoomCodeAlphabet.
func NewRoomCode() (string, error) {
	max := big.NewInt(int64(len(RoomCodeAlphabet)))
	code := make([]byte, RoomCodeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = RoomCodeAlphabet[num.Int64()]
	}
	return string(code), nil
}

func ValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(RoomCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

// NormalizeRoomCode upper-cases and trims a code typed by a player.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
