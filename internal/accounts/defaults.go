package accounts

import "github.com/cleared-dev/erpledger/internal/model"

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "service_company":
		return serviceCompanyChart()
	default:
		return tradingCompanyChart()
	}
}

func tradingCompanyChart() []model.Account {
	return []model.Account{
		{ID: 1101, Code: "1-1101", Name: "Cash on Hand", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset},
		{ID: 1102, Code: "1-1102", Name: "Bank", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset, Description: "Operating bank account"},
		{ID: 1103, Code: "1-1103", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset},
		{ID: 1104, Code: "1-1104", Name: "Inventory", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset, Description: "Warehouse stock"},
		{ID: 1201, Code: "1-1201", Name: "Equipment", Type: model.AccountTypeAsset, Classification: model.ClassFixedAsset},
		{ID: 1202, Code: "1-1202", Name: "Vehicles", Type: model.AccountTypeAsset, Classification: model.ClassFixedAsset},
		{ID: 1209, Code: "1-1209", Name: "Accumulated Depreciation", Type: model.AccountTypeAsset, Classification: model.ClassFixedAsset, ParentID: 1201, Description: "Contra asset; carries a credit balance"},
		{ID: 2101, Code: "2-2101", Name: "Accounts Payable", Type: model.AccountTypeLiability, Classification: model.ClassCurrentLiability},
		{ID: 2102, Code: "2-2102", Name: "Taxes Payable", Type: model.AccountTypeLiability, Classification: model.ClassCurrentLiability},
		{ID: 2201, Code: "2-2201", Name: "Bank Loan", Type: model.AccountTypeLiability, Classification: model.ClassLongTermLiability},
		{ID: 3101, Code: "3-3101", Name: "Paid-in Capital", Type: model.AccountTypeEquity, Classification: model.ClassEquity},
		{ID: 3901, Code: "3-3901", Name: "Opening Balance Equity", Type: model.AccountTypeEquity, Classification: model.ClassEquity, Description: "Offset for opening balance entries"},
		{ID: 4101, Code: "4-4101", Name: "Sales", Type: model.AccountTypeRevenue},
		{ID: 4102, Code: "4-4102", Name: "Sales Returns", Type: model.AccountTypeRevenue, ParentID: 4101},
		{ID: 5101, Code: "5-5101", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense},
		{ID: 6101, Code: "6-6101", Name: "Salaries", Type: model.AccountTypeExpense},
		{ID: 6102, Code: "6-6102", Name: "Rent", Type: model.AccountTypeExpense},
		{ID: 6103, Code: "6-6103", Name: "Depreciation Expense", Type: model.AccountTypeExpense},
	}
}

func serviceCompanyChart() []model.Account {
	return []model.Account{
		{ID: 1101, Code: "1-1101", Name: "Cash on Hand", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset},
		{ID: 1102, Code: "1-1102", Name: "Bank", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset},
		{ID: 1103, Code: "1-1103", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset},
		{ID: 1201, Code: "1-1201", Name: "Office Equipment", Type: model.AccountTypeAsset, Classification: model.ClassFixedAsset},
		{ID: 2101, Code: "2-2101", Name: "Accounts Payable", Type: model.AccountTypeLiability, Classification: model.ClassCurrentLiability},
		{ID: 3101, Code: "3-3101", Name: "Paid-in Capital", Type: model.AccountTypeEquity, Classification: model.ClassEquity},
		{ID: 3901, Code: "3-3901", Name: "Opening Balance Equity", Type: model.AccountTypeEquity, Classification: model.ClassEquity},
		{ID: 4101, Code: "4-4101", Name: "Service Revenue", Type: model.AccountTypeRevenue},
		{ID: 6101, Code: "6-6101", Name: "Salaries", Type: model.AccountTypeExpense},
		{ID: 6102, Code: "6-6102", Name: "Rent", Type: model.AccountTypeExpense},
	}
}
