package models

// Category vocabulary. Uncounted marks transactions excluded from
// spending/income aggregates (internal transfers, exchanges); Uncategorized
// marks transactions not yet classified.
const (
	CategoryGroceries    = "Groceries"
	CategoryDining       = "Dining"
	CategoryTransport    = "Transport"
	CategoryTravel       = "Travel"
	CategoryUtilities    = "Utilities"
	CategoryHealth       = "Health"
	CategoryLeisure      = "Leisure"
	CategoryShopping     = "Shopping"
	CategoryBankTransfer = "Bank Transfer"
	CategorySalary       = "Salary"

	CategoryUncounted     = "Uncounted"
	CategoryUncategorized = "Uncategorized"
)

// Categories lists the assignable (non-sentinel) categories in display order.
var Categories = []string{
	CategoryGroceries,
	CategoryDining,
	CategoryTransport,
	CategoryTravel,
	CategoryUtilities,
	CategoryHealth,
	CategoryLeisure,
	CategoryShopping,
	CategoryBankTransfer,
	CategorySalary,
}

// File permissions for persisted state.
const (
	PermissionStateFile = 0600
	PermissionDirectory = 0750
)
