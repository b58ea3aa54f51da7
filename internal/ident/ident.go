// Package ident produces process-unique string identifiers in the same shape
// the stored data already uses: a base36 millisecond timestamp followed by a
// random suffix. There is no global counter and no collision detection.
package ident

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 10

// New returns a fresh identifier.
func New() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ts + suffix[:suffixLen]
}
