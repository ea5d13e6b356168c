package oppdragwire

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func buildDetaljer(n int) []AvstemmingDetalj {
	detaljer := make([]AvstemmingDetalj, 0, n)
	for i := 0; i < n; i++ {
		detaljer = append(detaljer, AvstemmingDetalj{
			VedtakID: fmt.Sprintf("vedtak-%04d", i),
			Status:   "APPROVED",
			Beloep:   int64(i + 1),
		})
	}
	return detaljer
}

func TestBuildAvstemmingMeldinger(t *testing.T) {
	fraOgMed := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tilOgMed := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	t.Run("Empty Window Still Yields Start And Avsl", func(t *testing.T) {
		meldinger := BuildAvstemmingMeldinger("run-id", "INTERFACE", "UTBETALING", fraOgMed, tilOgMed, nil)

		assert.Len(t, meldinger, 2)
		assert.Equal(t, "START", meldinger[0].Aksjon.AksjonType)
		assert.Equal(t, "AVSL", meldinger[1].Aksjon.AksjonType)
		assert.Equal(t, 0, meldinger[1].Total.TotalAntall)
		assert.Equal(t, int64(0), meldinger[1].Total.TotalBeloep)
	})

	t.Run("Chunks Data Messages At Seventy Records", func(t *testing.T) {
		cases := []struct {
			records      int
			dataMessages int
		}{
			{1, 1},
			{69, 1},
			{70, 1},
			{71, 2},
			{140, 2},
			{141, 3},
		}
		for _, tc := range cases {
			meldinger := BuildAvstemmingMeldinger("run-id", "INTERFACE", "UTBETALING", fraOgMed, tilOgMed, buildDetaljer(tc.records))

			assert.Len(t, meldinger, tc.dataMessages+2, "%d records need %d DATA messages", tc.records, tc.dataMessages)
			for _, melding := range meldinger[1 : len(meldinger)-1] {
				assert.Equal(t, "DATA", melding.Aksjon.AksjonType)
				assert.LessOrEqual(t, len(melding.Detaljer), 70, "a DATA message never carries more than 70 records")
			}
		}
	})

	t.Run("Preserves Record Order Across Chunks", func(t *testing.T) {
		detaljer := buildDetaljer(150)
		meldinger := BuildAvstemmingMeldinger("run-id", "INTERFACE", "UTBETALING", fraOgMed, tilOgMed, detaljer)

		var flattened []AvstemmingDetalj
		for _, melding := range meldinger {
			flattened = append(flattened, melding.Detaljer...)
		}
		assert.Equal(t, detaljer, flattened, "splitting must not reorder or split records")
	})

	t.Run("Running Totals Accumulate Per Data Message", func(t *testing.T) {
		detaljer := buildDetaljer(150)
		meldinger := BuildAvstemmingMeldinger("run-id", "INTERFACE", "UTBETALING", fraOgMed, tilOgMed, detaljer)

		var antall int
		var beloep int64
		for _, melding := range meldinger[1 : len(meldinger)-1] {
			antall += len(melding.Detaljer)
			for _, detalj := range melding.Detaljer {
				beloep += detalj.Beloep
			}
			assert.Equal(t, antall, melding.Total.TotalAntall)
			assert.Equal(t, beloep, melding.Total.TotalBeloep)
		}

		avsl := meldinger[len(meldinger)-1]
		assert.Equal(t, 150, avsl.Total.TotalAntall)
		assert.Equal(t, beloep, avsl.Total.TotalBeloep, "AVSL carries the grand totals")
	})

	t.Run("All Messages Share Run ID And Window", func(t *testing.T) {
		meldinger := BuildAvstemmingMeldinger("shared-run-id", "CONSISTENCY", "UTBETALING", fraOgMed, tilOgMed, buildDetaljer(3))

		for _, melding := range meldinger {
			assert.Equal(t, "shared-run-id", melding.Aksjon.AvstemmingID)
			assert.Equal(t, "CONSISTENCY", melding.Aksjon.Kind)
			assert.Equal(t, "UTBETALING", melding.Aksjon.Kategori)
			assert.Equal(t, "2026-08-01-00.00.00.000000", melding.Aksjon.FraOgMed)
			assert.Equal(t, "2026-08-02-00.00.00.000000", melding.Aksjon.TilOgMed)
		}
	})
}

func TestEncodeAvstemmingsdata(t *testing.T) {
	t.Run("Produces XML With Header", func(t *testing.T) {
		melding := Avstemmingsdata{
			Aksjon: Aksjon{AksjonType: "START", AvstemmingID: "run-id"},
		}
		body, err := EncodeAvstemmingsdata(melding)

		assert.NoError(t, err)
		assert.Contains(t, string(body), `<?xml version="1.0" encoding="UTF-8"?>`)
		assert.Contains(t, string(body), "<aksjonType>START</aksjonType>")
	})
}
