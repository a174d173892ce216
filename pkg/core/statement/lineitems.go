package statement

// =============================================================================
// LINE-ITEM VOCABULARY
// Names match the normalized per-company table produced by the processing
// stage, so historical and forecast rows share one column space.
// =============================================================================

// Income statement
const (
	TotalRevenue                = "Total Revenue"
	CostOfRevenue               = "Cost Of Revenue"
	OperatingExpense            = "Operating Expense"
	ReconciledDepreciation      = "Reconciled Depreciation"
	DepreciationAndAmortization = "Depreciation And Amortization"
	NetInterestIncome           = "Net Interest Income"
	OtherIncomeExpense          = "Other Income Expense"
	TaxProvision                = "Tax Provision"
	TaxRateForCalcs             = "Tax Rate For Calcs"
	PretaxIncome                = "Pretax Income"
	GrossProfit                 = "Gross Profit"
	EBIT                        = "EBIT"
	EBITDA                      = "EBITDA"
	EBT                         = "EBT"
	NetIncome                   = "Net Income"
)

// Balance sheet
const (
	AccountsReceivable    = "Accounts Receivable"
	AccountsPayable       = "Accounts Payable"
	Inventory             = "Inventory"
	NetPPE                = "Net PPE"
	LongTermDebt          = "Long Term Debt And Capital Lease Obligation"
	Intangibles           = "Goodwill And Other Intangible Assets"
	TotalEquity           = "Total Equity Gross Minority Interest"
	Cash                  = "Cash Cash Equivalents And Short Term Investments"
	CurrentAssets         = "Current Assets"
	NonCurrentAssets      = "Total Non Current Assets"
	CurrentLiabilities    = "Current Liabilities"
	NonCurrentLiabilities = "Total Non Current Liabilities Net Minority Interest"

	OtherCurrentAssets         = "OtherCurrentAssets_agg"
	OtherNonCurrentAssets      = "OtherNonCurrentAssets_agg"
	OtherCurrentLiabilities    = "OtherCurrentLiabilities_agg"
	OtherNonCurrentLiabilities = "OtherNonCurrentLiabilities_agg"
)

// Cash flow (forecast only)
const (
	OperatingTaxes               = "Operating Taxes"
	NOPAT                        = "NOPAT"
	GrossCashFlow                = "Gross Cash Flow"
	InvestmentInWorkingCapital   = "Investment in Working Capital"
	InvestmentInOtherAssets      = "Investment in Other Assets"
	InvestmentInOtherLiabilities = "Investment in Other Liabilities"
	Capex                        = "Capex"
	OtherInvestment              = "Other Investment"
	UFCF                         = "UFCF"
	NetCashFlow                  = "Net Cash Flow"
)

// TypeColumn is the column name carrying the Historical/Forecast tag in
// persisted combined tables.
const TypeColumn = "Type"
