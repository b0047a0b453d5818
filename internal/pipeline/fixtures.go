package pipeline

import (
	"fmt"

	"fundamental-grader/internal/domain"
)

// demoCompany seeds one demo row. Scale shifts every metric value.
type demoCompany struct {
	ticker   string
	name     string
	sector   string
	industry string
	price    float64
	scale    float64
}

var demoCompanies = []demoCompany{
	{"ADBE", "Adobe Inc.", "Technology", "Software - Infrastructure", 512.40, 1.00},
	{"CRM", "Salesforce, Inc.", "Technology", "Software - Application", 271.15, 1.35},
	{"INTU", "Intuit Inc.", "Technology", "Software - Application", 618.90, 0.80},
	{"NOW", "ServiceNow, Inc.", "Technology", "Software - Application", 735.20, 1.60},
	{"ABT", "Abbott Laboratories", "Healthcare", "Medical Devices", 104.55, 0.90},
	{"JNJ", "Johnson & Johnson", "Healthcare", "Drug Manufacturers - General", 152.30, 1.10},
	{"MRK", "Merck & Co., Inc.", "Healthcare", "Drug Manufacturers - General", 121.75, 1.25},
	{"PFE", "Pfizer Inc.", "Healthcare", "Drug Manufacturers - General", 28.40, 1.70},
	{"COP", "ConocoPhillips", "Energy", "Oil & Gas E&P", 116.20, 1.05},
	{"CVX", "Chevron Corporation", "Energy", "Oil & Gas Integrated", 155.80, 0.85},
	{"EOG", "EOG Resources, Inc.", "Energy", "Oil & Gas E&P", 124.10, 1.45},
	{"XOM", "Exxon Mobil Corporation", "Energy", "Oil & Gas Integrated", 113.65, 1.20},
}

// percentMetrics are rendered with a trailing % like screener exports.
var percentMetrics = map[string]bool{
	domain.MetricProfitMargin: true, domain.MetricOperMargin: true, domain.MetricGrossMargin: true,
	domain.MetricROE: true, domain.MetricROA: true,
	domain.MetricEPSThisY: true, domain.MetricEPSNextY: true, domain.MetricEPSNext5Y: true,
	domain.MetricSalesQoQ: true, domain.MetricEPSQoQ: true,
	domain.MetricPerfMonth: true, domain.MetricPerfQuart: true, domain.MetricPerfHalf: true,
	domain.MetricPerfYear: true, domain.MetricPerfYTD: true, domain.MetricVolatilityM: true,
}

// DemoDataset returns a small screener-style dataset covering every catalog
// metric of the variant: three sectors of four companies each.
func DemoDataset(variant domain.Variant) (*domain.Dataset, error) {
	catalog, err := domain.CatalogFor(variant)
	if err != nil {
		return nil, err
	}
	metrics := catalog.Metrics()

	columns := []string{domain.ColumnTicker, domain.ColumnCompany, domain.ColumnSector, domain.ColumnIndustry}
	for _, m := range metrics {
		columns = append(columns, m.Name)
	}
	columns = append(columns, domain.ColumnPrice, domain.ColumnTargetPrice)

	companies := make([]domain.Company, len(demoCompanies))
	for i, dc := range demoCompanies {
		cells := map[string]string{
			domain.ColumnTicker:      dc.ticker,
			domain.ColumnCompany:     dc.name,
			domain.ColumnSector:      dc.sector,
			domain.ColumnIndustry:    dc.industry,
			domain.ColumnPrice:       fmt.Sprintf("%.2f", dc.price),
			domain.ColumnTargetPrice: fmt.Sprintf("%.2f", dc.price*(0.9+0.1*dc.scale)),
		}
		for j, m := range metrics {
			v := float64(j+2) * dc.scale
			if j%3 == 1 {
				v = -v / 4
			}
			if percentMetrics[m.Name] {
				cells[m.Name] = fmt.Sprintf("%.2f%%", v)
			} else {
				cells[m.Name] = fmt.Sprintf("%.2f", v)
			}
		}
		companies[i] = domain.NewCompany(dc.ticker, dc.sector, dc.industry, cells)
	}

	return domain.NewDataset(columns, companies)
}
