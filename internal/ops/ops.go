// Package ops implements the operations behind every surface: the synchronous
// generation pipeline, the differential-visibility review reads, and the
// review-ledger mutations. HTTP, MCP, and CLI layers all call through here.
package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// AnnotationKinds lists the accepted annotation kinds.
var AnnotationKinds = map[string]bool{
	"comment":  true,
	"question": true,
	"flag":     true,
}

// newULID generates a new ULID.
func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
