package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
)

// DecodeLedger parses a stored ledger document and backfills what it is
// missing. changed reports whether backfilling altered the document.
//
// A document that is not valid JSON yields the empty default ledger together
// with an error wrapping ErrMalformedLedger; callers log it and carry on with
// the default, which is only written back on the next mutation.
func DecodeLedger(data []byte, username string) (l core.Ledger, changed bool, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return core.NewLedger(username), false, nil
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return core.NewLedger(username), false, fmt.Errorf("%w: %v", ErrMalformedLedger, err)
	}
	changed = l.Normalize(username)
	return l, changed, nil
}

// EncodeLedger renders the document in the indented layout stored on disk.
func EncodeLedger(l core.Ledger) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return append(data, '\n'), nil
}
