package domain

import "time"

type ToolStatus string

const (
	ToolStatusAvailable   ToolStatus = "available"
	ToolStatusRented      ToolStatus = "rented"
	ToolStatusMaintenance ToolStatus = "maintenance"
	ToolStatusUnavailable ToolStatus = "unavailable"
)

func (s ToolStatus) Valid() bool {
	switch s {
	case ToolStatusAvailable, ToolStatusRented, ToolStatusMaintenance, ToolStatusUnavailable:
		return true
	}
	return false
}

type MaintenanceImportance string

const (
	MaintenanceImportanceLow    MaintenanceImportance = "low"
	MaintenanceImportanceMedium MaintenanceImportance = "medium"
	MaintenanceImportanceHigh   MaintenanceImportance = "high"
)

func (i MaintenanceImportance) Valid() bool {
	switch i {
	case MaintenanceImportanceLow, MaintenanceImportanceMedium, MaintenanceImportanceHigh:
		return true
	}
	return false
}

// MaintenanceStatus is the derived maintenance classification of a tool.
type MaintenanceStatus string

const (
	MaintenanceStatusInService MaintenanceStatus = "in_service"
	MaintenanceStatusExpired   MaintenanceStatus = "expired"
	MaintenanceStatusDueSoon   MaintenanceStatus = "due_soon"
	MaintenanceStatusCompliant MaintenanceStatus = "compliant"
)

type Tool struct {
	ID                        int32                 `json:"id"`
	Title                     string                `json:"title"`
	CategoryID                int32                 `json:"category_id"`
	WeeklyPriceCents          int32                 `json:"weekly_price_cents"`
	PurchasePriceCents        int32                 `json:"purchase_price_cents"`
	PurchaseDate              *Date                 `json:"purchase_date,omitempty"`
	Status                    ToolStatus            `json:"status"`
	LastMaintenanceDate       *Date                 `json:"last_maintenance_date,omitempty"`
	MaintenanceIntervalMonths *int32                `json:"maintenance_interval_months,omitempty"`
	MaintenanceImportance     MaintenanceImportance `json:"maintenance_importance"`
	CreatedOn                 time.Time             `json:"created_on"`
}

// ToolMaintenanceView is a tool together with its derived maintenance state.
type ToolMaintenanceView struct {
	Tool              Tool              `json:"tool"`
	MaintenanceStatus MaintenanceStatus `json:"maintenance_status"`
	MaintenanceDueOn  *Date             `json:"maintenance_due_on,omitempty"`
	BlocksRental      bool              `json:"blocks_rental"`
}

// ToolFilter narrows tool listings; zero values are ignored.
type ToolFilter struct {
	Status     ToolStatus
	CategoryID int32
	Page       int32
	PageSize   int32
}
