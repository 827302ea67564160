package commit

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateInvoiceNumber builds INV-YYYYMMDD-NNNNN with a 5-digit suffix
// drawn from a random UUID. The suffix space is small, so uniqueness is
// probabilistic at business scale; an actual collision trips the unique
// constraint and rolls the commit back instead of corrupting data.
func GenerateInvoiceNumber(now time.Time) string {
	u := uuid.New()
	suffix := binary.BigEndian.Uint32(u[0:4]) % 100000
	return fmt.Sprintf("INV-%s-%05d", now.Format("20060102"), suffix)
}
