package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Domain prefixes for content digests. The version suffix leaves room for
// algorithm migration without ambiguity between old and new digests.
const (
	domainEvent = "telestrator/event/v1"
	domainLog   = "telestrator/log/v1"
	domainTrace = "telestrator/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) in hex. The null
// separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventDigest returns the content digest of one event over its canonical
// wire form.
func EventDigest(e Event) (string, error) {
	wire, err := MarshalEvent(e)
	if err != nil {
		return "", err
	}
	canonical, err := CanonicalJSON(wire)
	if err != nil {
		return "", err
	}
	return hashWithDomain(domainEvent, canonical), nil
}

// LogDigest returns the content digest of an ordered log, computed over the
// canonical JSON array of wire events. Two loads of the same stored log
// digest identically; replay verification and export integrity both key off
// this.
func LogDigest(events []Event) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range events {
		if i > 0 {
			buf.WriteByte(',')
		}
		wire, err := MarshalEvent(e)
		if err != nil {
			return "", fmt.Errorf("event %d: %w", i, err)
		}
		buf.Write(wire)
	}
	buf.WriteByte(']')
	canonical, err := CanonicalJSON(buf.Bytes())
	if err != nil {
		return "", err
	}
	return hashWithDomain(domainLog, canonical), nil
}

// TraceDigest returns the digest of a replay trace, one line per observed
// call, newline joined. Two replays of the same log must produce the same
// trace digest.
func TraceDigest(lines []string) string {
	return hashWithDomain(domainTrace, []byte(strings.Join(lines, "\n")))
}
