package checkout

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderCode returns "OD" followed by the base36 millisecond timestamp and a
// four character random suffix.
func NewOrderCode(now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString("OD")
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
