package quotes

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// numberAlphabet excludes nothing; quote numbers are never typed by hand,
// only scanned or copied.
const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const numberSuffixLen = 6

// newQuoteNumber builds a quote number of the form
// QT-{owner}-{YYYYMMDD}-{suffix}, where owner is the first hex group of the
// tenant id and suffix is random. Collisions are possible and handled by the
// caller retrying against the unique index.
func newQuoteNumber(ownerID uuid.UUID, on time.Time) (string, error) {
	suffix := make([]byte, numberSuffixLen)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("reading random suffix: %w", err)
	}
	for i, b := range suffix {
		suffix[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}

	owner := strings.SplitN(ownerID.String(), "-", 2)[0]
	return fmt.Sprintf("QT-%s-%s-%s", strings.ToUpper(owner), on.Format("20060102"), string(suffix)), nil
}
