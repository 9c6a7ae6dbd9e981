//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseRecordID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseRecordID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseRecordID(input)
		if err == nil {
			if id.IsNil() {
				t.Error("parsed nil record id without error")
			}
			roundTrip, err2 := ParseRecordID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
		}
	})
}
