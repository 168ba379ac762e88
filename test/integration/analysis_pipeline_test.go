package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gardeningNoticeXML = `<?xml version="1.0" encoding="UTF-8"?>
<ContractAwardNotice
    xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
    xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:IssueDate>2024-04-10</cbc:IssueDate>
  <cac:ProcurementProject>
    <cbc:Name>Servicio de mantenimiento de zonas verdes y jardines municipales en el distrito centro</cbc:Name>
    <cbc:TypeCode name="Servicios">2</cbc:TypeCode>
    <cac:BudgetAmount>
      <cbc:TaxExclusiveAmount currencyID="EUR">250000</cbc:TaxExclusiveAmount>
    </cac:BudgetAmount>
    <cac:RequiredCommodityClassification>
      <cbc:ItemClassificationCode>77311000</cbc:ItemClassificationCode>
    </cac:RequiredCommodityClassification>
    <cac:RealizedLocation>
      <cbc:CountrySubentity>Madrid</cbc:CountrySubentity>
    </cac:RealizedLocation>
  </cac:ProcurementProject>
  <cac:TenderingProcess>
    <cbc:ProcedureCode name="Abierto">1</cbc:ProcedureCode>
  </cac:TenderingProcess>
</ContractAwardNotice>`

func TestAnalysisPipeline_EndToEnd(t *testing.T) {
	skipUnlessIntegration(t)

	pool := openPool(t)
	seedContracts(t, pool, [][]string{
		{"Mantenimiento de jardines y zonas verdes en parques urbanos", "Servicios", "77311000", "Madrid", "240.000 €", "216.000 €", "Jardines Centro SA", "2023-05-10"},
		{"Conservación de zonas verdes municipales", "Servicios", "77311000", "Madrid", "260.000 €", "228.800 €", "Verde Urbano SL", "2023-09-01"},
		{"Servicio de jardinería y poda en vías públicas", "Servicios", "77310000", "Madrid", "255.000 €", "221.850 €", "Jardines Centro SA", "2024-01-15"},
		{"Suministro de material de oficina", "Suministros", "30192000", "Valencia", "40.000 €", "38.000 €", "Papelera SA", "2023-03-01"},
	})

	srv := noticeServer(t, gardeningNoticeXML)
	svc := newService(t, pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := svc.AnalyzeURL(ctx, srv.URL+"/notice.xml")
	require.NoError(t, err)

	require.NotNil(t, report.Contract)
	require.NotNil(t, report.Contract.Budget)
	assert.Equal(t, 250000.0, *report.Contract.Budget)

	// The office supplies row must not survive the relevance filter.
	assert.Equal(t, 3, report.MatchStats.Total)
	assert.Equal(t, 3, report.MatchStats.CPVMatches)

	// Discounts 10%, 12%, 13% cluster together: max 13 plus the outbid margin.
	assert.InDelta(t, 15.0, report.Recommendation.Percent, 0.001)

	require.NotEmpty(t, report.Awardees)
	assert.Equal(t, "Jardines Centro SA", report.Awardees[0].Name)
	assert.Equal(t, 2, report.Awardees[0].Contracts)

	assert.Contains(t, report.Narrative, "hemos identificado 3 licitaciones comparables")
}

func TestAnalysisPipeline_TableDiscovery(t *testing.T) {
	skipUnlessIntegration(t)

	pool := openPool(t)
	seedContracts(t, pool, [][]string{
		{"Obras de asfaltado en calles del municipio", "Obras", "45233222", "Sevilla", "500.000 €", "450.000 €", "Asfaltos Sur SA", "2023-06-01"},
	})

	svc := newService(t, pool)
	srv := noticeServer(t, gardeningNoticeXML)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Unrelated history still analyzes; it just yields no candidates.
	report, err := svc.AnalyzeURL(ctx, srv.URL+"/notice.xml")
	require.NoError(t, err)
	assert.Equal(t, 0, report.MatchStats.Total)
	assert.Contains(t, report.Recommendation.Rationale, "No hay")
}
