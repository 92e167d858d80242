package analysis

// Bilingual keyword table for income-statement row location. Ordering inside
// a set does not matter; the locator keeps the best score across all of them.
var statementKeywords = map[MetricID][]string{
	MetricRevenue:         {"營業收入", "revenue", "total revenue", "net sales", "sales"},
	MetricGrossProfit:     {"營業毛利", "gross profit"},
	MetricOperatingIncome: {"營業利益", "operating income", "operating profit"},
	MetricNetIncome:       {"本期淨利", "net income", "稅後淨利", "net profit"},
	MetricGrossMargin:     {"毛利率", "gross margin", "gross profit margin"},
}

// Tokens that disqualify a candidate cell for an absolute-amount metric,
// keeping ratio rows like "Gross Profit Margin" from shadowing "Gross Profit".
var forbiddenTokens = map[MetricID][]string{
	MetricGrossProfit:     {"margin", "%", "率", "毛利率"},
	MetricOperatingIncome: {"margin", "%", "率"},
	MetricNetIncome:       {"margin", "%", "率", "淨利率"},
	MetricRevenue:         {},
	MetricGrossMargin:     {},
}

// statementOrder fixes the extraction (and output) order of the located metrics
var statementOrder = []MetricID{
	MetricRevenue,
	MetricGrossProfit,
	MetricOperatingIncome,
	MetricNetIncome,
	MetricGrossMargin,
}

var labelsEN = map[MetricID]string{
	MetricRevenue:         "Revenue",
	MetricGrossProfit:     "Gross Profit",
	MetricOperatingIncome: "Operating Income",
	MetricNetIncome:       "Net Profit",
	MetricGrossMargin:     "Gross Margin %",
	MetricOpex:            "Operating Expense",
}

var labelsZH = map[MetricID]string{
	MetricRevenue:         "營收",
	MetricGrossProfit:     "毛利",
	MetricOperatingIncome: "營業利益",
	MetricNetIncome:       "淨利",
	MetricGrossMargin:     "毛利率%",
	MetricOpex:            "營業費用",
}

// unitFor returns the display unit for a metric: percent for ratio metrics,
// the reporting currency otherwise.
func unitFor(id MetricID) string {
	if id == MetricGrossMargin {
		return "%"
	}
	return "NTD"
}

// Cash-cycle KPI label variants, matched by unscored substring search
var cashCycleVariants = map[string][]string{
	"DSO": {"DSO", "應收天數", "應收帳款週轉天數"},
	"DIO": {"DIO", "存貨天數", "存貨週轉天數"},
	"DPO": {"DPO", "應付天數", "應付帳款週轉天數"},
	"CCC": {"CCC", "現金週轉", "現金循環"},
}

var cashCycleOrder = []string{"DSO", "DIO", "DPO", "CCC"}
