package oppdragwire

import (
	"encoding/xml"
	"time"

	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/exceptions"
)

const avstemmingTimeLayout = "2006-01-02-15.04.05.000000"

// Avstemmingsdata is one message of a reconciliation sequence. A run is
// always transmitted as START, then one or more DATA messages, then AVSL,
// all stamped with the same 22-character run id.
type Avstemmingsdata struct {
	XMLName  xml.Name           `xml:"avstemmingsdata"`
	Aksjon   Aksjon             `xml:"aksjon"`
	Detaljer []AvstemmingDetalj `xml:"detalj,omitempty"`
	Total    *Totaldata         `xml:"totaldata,omitempty"`
}

type Aksjon struct {
	AksjonType   string `xml:"aksjonType"`
	AvstemmingID string `xml:"avleverendeAvstemmingId"`
	Kategori     string `xml:"kategori"`
	Kind         string `xml:"avstemmingType"`
	FraOgMed     string `xml:"nokkelFom"`
	TilOgMed     string `xml:"nokkelTom"`
}

// AvstemmingDetalj is one logical detail record. Splitting a run into DATA
// messages must never split a detail record.
type AvstemmingDetalj struct {
	VedtakID string `xml:"vedtakId"`
	Status   string `xml:"status"`
	Beloep   int64  `xml:"beloep"`
}

// Totaldata carries the running totals up to and including the current DATA
// message, so the receiver can verify completeness mid-sequence.
type Totaldata struct {
	TotalAntall int   `xml:"totalAntall"`
	TotalBeloep int64 `xml:"totalBeloep"`
}

// BuildAvstemmingMeldinger assembles the full message sequence for one run.
// DATA messages carry at most constvars.AvstemmingMaxDetaljer records each,
// in snapshot order. A run with zero detail records still produces
// START and AVSL so the receiver sees an explicitly empty window.
func BuildAvstemmingMeldinger(runID, kind, kategori string, fraOgMed, tilOgMed time.Time, detaljer []AvstemmingDetalj) []Avstemmingsdata {
	aksjon := func(aksjonType string) Aksjon {
		return Aksjon{
			AksjonType:   aksjonType,
			AvstemmingID: runID,
			Kategori:     kategori,
			Kind:         kind,
			FraOgMed:     fraOgMed.UTC().Format(avstemmingTimeLayout),
			TilOgMed:     tilOgMed.UTC().Format(avstemmingTimeLayout),
		}
	}

	meldinger := make([]Avstemmingsdata, 0, len(detaljer)/constvars.AvstemmingMaxDetaljer+3)
	meldinger = append(meldinger, Avstemmingsdata{Aksjon: aksjon(constvars.AvstemmingAksjonStart)})

	var runningAntall int
	var runningBeloep int64
	for start := 0; start < len(detaljer); start += constvars.AvstemmingMaxDetaljer {
		end := start + constvars.AvstemmingMaxDetaljer
		if end > len(detaljer) {
			end = len(detaljer)
		}
		chunk := detaljer[start:end]
		runningAntall += len(chunk)
		for _, detalj := range chunk {
			runningBeloep += detalj.Beloep
		}
		meldinger = append(meldinger, Avstemmingsdata{
			Aksjon:   aksjon(constvars.AvstemmingAksjonData),
			Detaljer: chunk,
			Total: &Totaldata{
				TotalAntall: runningAntall,
				TotalBeloep: runningBeloep,
			},
		})
	}

	meldinger = append(meldinger, Avstemmingsdata{
		Aksjon: aksjon(constvars.AvstemmingAksjonAvsl),
		Total: &Totaldata{
			TotalAntall: runningAntall,
			TotalBeloep: runningBeloep,
		},
	})
	return meldinger
}

// EncodeAvstemmingsdata serializes one message of the sequence.
func EncodeAvstemmingsdata(melding Avstemmingsdata) ([]byte, error) {
	body, err := xml.Marshal(melding)
	if err != nil {
		return nil, exceptions.ErrAvstemmingEncode(err)
	}
	return append([]byte(xml.Header), body...), nil
}
