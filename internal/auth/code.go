package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// GenerateDailyCode returns an 8 character code: 4 upper hex characters drawn
// from rnd followed by the last 4 base-36 digits of now in unix millis.
func GenerateDailyCode(now time.Time, rnd io.Reader) (string, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	b := make([]byte, 4)
	if _, err := io.ReadFull(rnd, b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	random := strings.ToUpper(hex.EncodeToString(b))[:4]

	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if len(stamp) > 4 {
		stamp = stamp[len(stamp)-4:]
	}
	return random + stamp, nil
}

// Today is the calendar date of now in loc, formatted YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(dateLayout)
}
