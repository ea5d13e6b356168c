package oppdragwire

import (
	"encoding/xml"
	"fmt"

	"oppdrag-service/internal/pkg/exceptions"
)

// Kvittering is the asynchronous acknowledgment for one oppdrag. The
// alvorlighetsgrad is the only field the state machine keys on; feilkode
// and beskrivelse are carried through for the audit trail.
type Kvittering struct {
	XMLName          xml.Name `xml:"kvittering"`
	VedtakID         string   `xml:"vedtakId"`
	Alvorlighetsgrad string   `xml:"alvorlighetsgrad"`
	Feilkode         string   `xml:"feilkode"`
	Beskrivelse      string   `xml:"beskrivelse"`
}

// DecodeKvittering parses a raw kvittering message. A message without a
// vedtakId cannot be correlated and is rejected here rather than deeper in.
func DecodeKvittering(raw []byte) (*Kvittering, error) {
	var kvittering Kvittering
	if err := xml.Unmarshal(raw, &kvittering); err != nil {
		return nil, exceptions.ErrKvitteringDecode(err)
	}
	if kvittering.VedtakID == "" {
		return nil, exceptions.ErrKvitteringDecode(fmt.Errorf("kvittering has no vedtakId"))
	}
	return &kvittering, nil
}
