package verification

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
)

const (
	codeMin = 100000
	codeMax = 999999
)

var codeSpan = big.NewInt(codeMax - codeMin + 1)

// GenerateCode returns a uniformly random six digit code in [100000, 999999]
func GenerateCode() (string, error) {
	return generateCode(rand.Reader)
}

func generateCode(r io.Reader) (string, error) {
	n, err := rand.Int(r, codeSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
