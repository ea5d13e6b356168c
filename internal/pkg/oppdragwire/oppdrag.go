// Package oppdragwire holds the schema-bound encoders and decoders for the
// external payment system's wire formats. Nothing outside this package sees
// the external representation.
package oppdragwire

import (
	"encoding/xml"

	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/exceptions"
)

type Oppdrag struct {
	XMLName      xml.Name       `xml:"oppdrag"`
	VedtakID     string         `xml:"vedtakId"`
	SakID        string         `xml:"sakId"`
	BehandlingID string         `xml:"behandlingId"`
	VedtakType   string         `xml:"vedtakType"`
	Linjer       []OppdragLinje `xml:"oppdragslinje"`
}

type OppdragLinje struct {
	LinjeID        string   `xml:"linjeId"`
	FraOgMed       string   `xml:"fraOgMed"`
	TilOgMed       string   `xml:"tilOgMed"`
	Beloep         int64    `xml:"beloep"`
	Attestanter    []string `xml:"attestant"`
	Frekvens       string   `xml:"utbetalingsfrekvens"`
	ForrigeLinjeID string   `xml:"forrigeLinjeId,omitempty"`
}

// EncodeOppdrag serializes an instruction into the external oppdrag format.
func EncodeOppdrag(instruction *models.PaymentInstruction) ([]byte, error) {
	oppdrag := Oppdrag{
		VedtakID:     instruction.VedtakID,
		SakID:        instruction.SakID,
		BehandlingID: instruction.BehandlingID,
		VedtakType:   string(instruction.DecisionType),
		Linjer:       make([]OppdragLinje, 0, len(instruction.Lines)),
	}
	for _, line := range instruction.Lines {
		oppdrag.Linjer = append(oppdrag.Linjer, OppdragLinje{
			LinjeID:        line.LineID,
			FraOgMed:       line.FraOgMed,
			TilOgMed:       line.TilOgMed,
			Beloep:         line.Beloep,
			Attestanter:    line.Attestanter,
			Frekvens:       line.UtbetalingsFrekvens,
			ForrigeLinjeID: line.PreviousLineID,
		})
	}

	body, err := xml.Marshal(oppdrag)
	if err != nil {
		return nil, exceptions.ErrOppdragEncode(err)
	}
	return append([]byte(xml.Header), body...), nil
}
