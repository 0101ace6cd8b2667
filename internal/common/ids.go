package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOperationID returns a process-unique identifier of the form
// "<unix-millis>_<9 hex chars>". The timestamp prefix keeps ids roughly
// sortable by creation time; the random suffix disambiguates ids created
// within the same millisecond.
func NewOperationID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
