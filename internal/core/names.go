package core

import (
	"strconv"
	"unicode"
)

const nicknamePrefix = "User"

// IsValidName reports whether name can be used as a nickname or channel name:
// it must be non-empty and contain only letters and digits.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// nextNickname probes User0, User1, ... and returns the first free nickname.
func nextNickname(taken func(string) bool) string {
	for n := 0; ; n++ {
		nick := nicknamePrefix + strconv.Itoa(n)
		if !taken(nick) {
			return nick
		}
	}
}
