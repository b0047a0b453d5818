package domain

import "fmt"

// Polarity states whether a smaller or larger metric value is favorable.
type Polarity int

// Polarity values
const (
	LowerIsBetter Polarity = iota + 1
	HigherIsBetter
)

// String returns the polarity label used in reports.
func (p Polarity) String() string {
	switch p {
	case LowerIsBetter:
		return "lower-is-better"
	case HigherIsBetter:
		return "higher-is-better"
	default:
		return fmt.Sprintf("polarity(%d)", int(p))
	}
}

// Valid reports whether p is one of the known polarities.
func (p Polarity) Valid() bool {
	return p == LowerIsBetter || p == HigherIsBetter
}

// MetricDefinition names a graded metric column and its polarity.
type MetricDefinition struct {
	Name     string
	Polarity Polarity
}

// Category is a named, ordered group of metric definitions.
type Category struct {
	Name    string
	Metrics []MetricDefinition
}

// Metric column names.
const (
	// Valuation
	MetricFwdPE = "Fwd P/E"
	MetricPEG   = "PEG"
	MetricPS    = "P/S"
	MetricPB    = "P/B"
	MetricPFCF  = "P/FCF"

	// Profitability
	MetricProfitMargin = "Profit M"
	MetricOperMargin   = "Oper M"
	MetricGrossMargin  = "Gross M"
	MetricROE          = "ROE"
	MetricROA          = "ROA"

	// Growth
	MetricEPSThisY  = "EPS this Y"
	MetricEPSNextY  = "EPS next Y"
	MetricEPSNext5Y = "EPS next 5Y"
	MetricSalesQoQ  = "Sales Q/Q"
	MetricEPSQoQ    = "EPS Q/Q"

	// Performance
	MetricPerfMonth   = "Perf Month"
	MetricPerfQuart   = "Perf Quart"
	MetricPerfHalf    = "Perf Half"
	MetricPerfYear    = "Perf Year"
	MetricPerfYTD     = "Perf YTD"
	MetricVolatilityM = "Volatility M"

	// KPI (extended variant)
	MetricScale                = "Scale ($B)"
	MetricLaborCost            = "Labor Cost ($B)"
	MetricOperatingLeverage    = "Operating Leverage"
	MetricCSuiteDiversity      = "C-Suite Diversity"
	MetricTechnologicalEnabler = "Technological Enabler"
	MetricESGScore             = "ESG Score"
)

// Category names.
const (
	CategoryValuation     = "Valuation"
	CategoryProfitability = "Profitability"
	CategoryGrowth        = "Growth"
	CategoryPerformance   = "Performance"
	CategoryKPI           = "KPI"
)

// Identity and auxiliary column names.
const (
	ColumnTicker      = "Ticker"
	ColumnCompany     = "Company"
	ColumnSector      = "Sector"
	ColumnIndustry    = "Industry"
	ColumnPrice       = "Price"
	ColumnTargetPrice = "Target Price"
)

func lower(name string) MetricDefinition  { return MetricDefinition{Name: name, Polarity: LowerIsBetter} }
func higher(name string) MetricDefinition { return MetricDefinition{Name: name, Polarity: HigherIsBetter} }

func coreCategories() []Category {
	return []Category{
		{Name: CategoryValuation, Metrics: []MetricDefinition{
			lower(MetricFwdPE), lower(MetricPEG), lower(MetricPS), lower(MetricPB), lower(MetricPFCF),
		}},
		{Name: CategoryProfitability, Metrics: []MetricDefinition{
			higher(MetricProfitMargin), higher(MetricOperMargin), higher(MetricGrossMargin), higher(MetricROE), higher(MetricROA),
		}},
		{Name: CategoryGrowth, Metrics: []MetricDefinition{
			higher(MetricEPSThisY), higher(MetricEPSNextY), higher(MetricEPSNext5Y), higher(MetricSalesQoQ), higher(MetricEPSQoQ),
		}},
		{Name: CategoryPerformance, Metrics: []MetricDefinition{
			higher(MetricPerfMonth), higher(MetricPerfQuart), higher(MetricPerfHalf), higher(MetricPerfYear), higher(MetricPerfYTD),
			lower(MetricVolatilityM),
		}},
	}
}

func kpiCategory() Category {
	return Category{Name: CategoryKPI, Metrics: []MetricDefinition{
		higher(MetricScale), higher(MetricLaborCost), higher(MetricOperatingLeverage),
		higher(MetricCSuiteDiversity), higher(MetricTechnologicalEnabler), higher(MetricESGScore),
	}}
}
