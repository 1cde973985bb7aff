package classify

import "github.com/cleared-dev/nisab/internal/model"

// Question texts shared by archetypes of the same shape.
const (
	QuestionAssetUse      = "Is this held for trading or sale within the year, or used in your business operations?"
	QuestionFinancingType = "Is this financed through an Islamic contract (Murabaha, Ijarah, Musharakah) or a conventional interest-based loan?"
	QuestionDepositNature = "Is this a refundable deposit you paid, or money you hold on behalf of others?"
	QuestionOther         = "This item is not recognised. It will not be counted until you confirm how it should be treated."
)

const (
	rulingUnrecognised = "No ruling is applied to an unrecognised item until you clarify it."
	rulingConventional = "Conventional interest-bearing debt is not deducted from zakatable wealth (AAOIFI FAS 9)."
	rulingIslamicDebt  = "Debt under an Islamic financing contract that is due is deducted from zakatable wealth (AAOIFI FAS 9)."
	rulingFixedAsset   = "Assets used in operations are exempt; assets held for sale are zakatable at market value."
)

// DefaultArchetypes returns the built-in archetype table.
func DefaultArchetypes() []Archetype {
	return []Archetype{
		// Zakatable without ambiguity.
		{Name: "Cash on Hand", Aliases: []string{"cash", "cash in hand", "petty cash"}, Classification: model.Zakatable, Category: model.CategoryCurrentAssets,
			Ruling: "Cash is zakatable in full."},
		{Name: "Bank Accounts", Aliases: []string{"cash in bank", "checking account", "savings account", "current account", "bank balance"}, Classification: model.Zakatable, Category: model.CategoryCurrentAssets,
			Ruling: "Bank balances are zakatable in full; interest earned should be given away, not counted."},
		{Name: "Gold and Silver", Aliases: []string{"gold", "silver", "gold bullion", "silver bullion"}, Classification: model.Zakatable, Category: model.CategoryCurrentAssets,
			Ruling: "Gold and silver held as wealth are zakatable at current market value."},
		{Name: "Inventory", Aliases: []string{"stock in trade", "merchandise", "trading goods", "finished goods"}, Classification: model.Zakatable, Category: model.CategoryCurrentAssets,
			Ruling: "Trade goods are zakatable at market (cash-equivalent) value (AAOIFI FAS 9)."},
		{Name: "Accounts Receivable", Aliases: []string{"receivables", "trade receivables", "debtors"}, Classification: model.Zakatable, Category: model.CategoryCurrentAssets,
			Ruling: "Receivables expected to be collected are zakatable (AAOIFI FAS 9)."},
		{Name: "Loans Given", Aliases: []string{"money lent", "loans to others", "debts owed to you"}, Classification: model.Zakatable, Category: model.CategoryCurrentAssets,
			Ruling: "Recoverable loans you have made are zakatable."},
		{Name: "Trading Stocks", Aliases: []string{"trading shares", "day trading portfolio"}, Classification: model.Zakatable, Category: model.CategoryCurrentAssets,
			Ruling: "Shares bought for resale are zakatable at market value."},

		// Asset use decides.
		{Name: "Short-term Investments", Aliases: []string{"short term deposits", "marketable securities"}, Classification: model.NeedsClarification, QuestionType: model.QuestionAssetUse, Question: QuestionAssetUse, Category: model.CategoryCurrentAssets,
			Ruling: "Investments held for trading are zakatable at market value; holdings used in operations are exempt."},
		{Name: "Long-term Investments", Aliases: []string{"equity investments", "shares", "stocks"}, Classification: model.NeedsClarification, QuestionType: model.QuestionAssetUse, Question: QuestionAssetUse, Category: model.CategoryFixedAssets,
			Ruling: rulingFixedAsset},
		{Name: "Real Estate", Aliases: []string{"property", "investment property", "land"}, Classification: model.NeedsClarification, QuestionType: model.QuestionAssetUse, Question: QuestionAssetUse, Category: model.CategoryFixedAssets,
			Ruling: "Property held for sale is zakatable at market value; property used or rented out is exempt (rental income is counted as cash)."},

		// Exempt.
		{Name: "Primary Residence", Aliases: []string{"home", "house", "family home"}, Classification: model.Exempt,
			Ruling: "A home for personal use is exempt."},
		{Name: "Personal Vehicle", Aliases: []string{"car", "vehicle"}, Classification: model.Exempt,
			Ruling: "Vehicles for personal use are exempt."},
		{Name: "Household Items", Aliases: []string{"furniture", "household goods"}, Classification: model.Exempt,
			Ruling: "Personal and household goods are exempt."},
		{Name: "Property, Plant and Equipment", Aliases: []string{"ppe", "equipment", "machinery", "fixed assets"}, Classification: model.Exempt, Category: model.CategoryFixedAssets,
			Ruling: "Fixed assets used in operations are exempt (AAOIFI FAS 9)."},
		{Name: "Prepaid Expenses", Aliases: []string{"prepayments"}, Classification: model.Exempt, Category: model.CategoryCurrentAssets,
			Ruling: "Prepaid expenses are not cash-equivalent and are exempt (AAOIFI FAS 9)."},

		// Deposit nature decides.
		{Name: "Security Deposits", Aliases: []string{"rental deposit", "deposits paid", "refundable deposits"}, Classification: model.NeedsClarification, QuestionType: model.QuestionDepositNature, Question: QuestionDepositNature, Category: model.CategoryCurrentAssets,
			Ruling: "A refundable deposit you paid is your wealth; money held for others is not."},
		{Name: "Customer Deposits", Aliases: []string{"deposits received", "advances from customers", "unearned revenue"}, Classification: model.NeedsClarification, QuestionType: model.QuestionDepositNature, Question: QuestionDepositNature, Category: model.CategoryCurrentLiabilities,
			Ruling: "Money held on behalf of others is deducted; a deposit you paid remains yours."},

		// Financing type decides.
		{Name: "Accounts Payable", Aliases: []string{"payables", "trade payables", "creditors"}, Classification: model.NeedsClarification, QuestionType: model.QuestionFinancingType, Question: QuestionFinancingType, Category: model.CategoryCurrentLiabilities,
			Ruling: "Payables arising from Islamic financing are deductible; interest-bearing debt is not."},
		{Name: "Short-term Loans", Aliases: []string{"short term borrowings", "overdraft"}, Classification: model.NeedsClarification, QuestionType: model.QuestionFinancingType, Question: QuestionFinancingType, Category: model.CategoryCurrentLiabilities,
			Ruling: "Loans under Islamic contracts are deductible; conventional loans are not."},
		{Name: "Bank Loan", Aliases: []string{"loan", "mortgage", "car loan", "personal loan"}, Classification: model.NeedsClarification, QuestionType: model.QuestionFinancingType, Question: QuestionFinancingType, Category: model.CategoryLongTermLiabilities,
			Ruling: "Loans under Islamic contracts are deductible; conventional loans are not."},
		{Name: "Credit Card Balance", Aliases: []string{"credit card", "credit card debt"}, Classification: model.NeedsClarification, QuestionType: model.QuestionFinancingType, Question: QuestionFinancingType, Category: model.CategoryCurrentLiabilities,
			Ruling: "Balances on an Islamic card facility are deductible; interest-bearing card debt is not."},

		// Deductible.
		{Name: "Murabaha Financing", Aliases: []string{"murabaha"}, Classification: model.Deductible, Category: model.CategoryCurrentLiabilities, Ruling: rulingIslamicDebt},
		{Name: "Ijarah Financing", Aliases: []string{"ijarah", "ijara"}, Classification: model.Deductible, Category: model.CategoryLongTermLiabilities, Ruling: rulingIslamicDebt},
		{Name: "Musharakah Financing", Aliases: []string{"musharakah", "musharaka", "diminishing musharakah"}, Classification: model.Deductible, Category: model.CategoryLongTermLiabilities, Ruling: rulingIslamicDebt},
		{Name: "Accrued Expenses", Aliases: []string{"accrued liabilities", "salaries payable", "wages payable"}, Classification: model.Deductible, Category: model.CategoryCurrentLiabilities,
			Ruling: "Expenses due within the year are deducted (AAOIFI FAS 9)."},
		{Name: "Taxes Payable", Aliases: []string{"tax payable", "income tax due"}, Classification: model.Deductible, Category: model.CategoryCurrentLiabilities,
			Ruling: "Taxes due are deducted."},
		{Name: "Bills Due", Aliases: []string{"rent due", "utilities due", "outstanding bills"}, Classification: model.Deductible,
			Ruling: "Debts due now are deducted from zakatable wealth."},

		// Not deductible.
		{Name: "Interest Payable", Aliases: []string{"riba payable", "interest due"}, Classification: model.NotDeductible, Category: model.CategoryCurrentLiabilities, Ruling: rulingConventional},
	}
}

// Template is a starter line item offered when a session is created.
type Template struct {
	Name     string
	Category model.Category
}

// CommonItems returns the starter items for a portfolio kind.
func CommonItems(kind model.PortfolioKind) []Template {
	if kind == model.PortfolioBusiness {
		return []Template{
			{Name: "Cash on Hand", Category: model.CategoryCurrentAssets},
			{Name: "Bank Accounts", Category: model.CategoryCurrentAssets},
			{Name: "Inventory", Category: model.CategoryCurrentAssets},
			{Name: "Accounts Receivable", Category: model.CategoryCurrentAssets},
			{Name: "Short-term Investments", Category: model.CategoryCurrentAssets},
			{Name: "Prepaid Expenses", Category: model.CategoryCurrentAssets},
			{Name: "Property, Plant and Equipment", Category: model.CategoryFixedAssets},
			{Name: "Accounts Payable", Category: model.CategoryCurrentLiabilities},
			{Name: "Accrued Expenses", Category: model.CategoryCurrentLiabilities},
			{Name: "Bank Loan", Category: model.CategoryLongTermLiabilities},
		}
	}
	return []Template{
		{Name: "Cash on Hand"},
		{Name: "Bank Accounts"},
		{Name: "Gold and Silver"},
		{Name: "Short-term Investments"},
		{Name: "Loans Given"},
		{Name: "Bills Due"},
	}
}
