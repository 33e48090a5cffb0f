package utils

import (
	"toolshed-backend/internal/domain"
)

// MaintenanceDueSoonDays is how far ahead of the expiration date a tool starts
// being reported as due soon.
const MaintenanceDueSoonDays = 14

// MaintenanceExpiration returns the date the tool's current service expires, or
// nil when the tool has no maintenance schedule configured.
func MaintenanceExpiration(tool *domain.Tool) *domain.Date {
	if tool == nil || tool.LastMaintenanceDate == nil || tool.MaintenanceIntervalMonths == nil {
		return nil
	}
	expires := tool.LastMaintenanceDate.AddMonths(int(*tool.MaintenanceIntervalMonths))
	return &expires
}

// IsMaintenanceExpired reports whether the service interval ended strictly
// before today.
func IsMaintenanceExpired(tool *domain.Tool, today domain.Date) bool {
	expires := MaintenanceExpiration(tool)
	return expires != nil && expires.Before(today)
}

// ClassifyMaintenance derives the maintenance label shown for a tool. The first
// matching rule wins: withdrawn for service, expired, due soon, compliant.
func ClassifyMaintenance(tool *domain.Tool, today domain.Date) domain.MaintenanceStatus {
	if tool.Status == domain.ToolStatusMaintenance {
		return domain.MaintenanceStatusInService
	}

	expires := MaintenanceExpiration(tool)
	switch {
	case expires == nil:
		return domain.MaintenanceStatusCompliant
	case expires.Before(today):
		return domain.MaintenanceStatusExpired
	case expires.Before(today.AddDays(MaintenanceDueSoonDays)):
		return domain.MaintenanceStatusDueSoon
	default:
		return domain.MaintenanceStatusCompliant
	}
}

// BlocksRental reports whether overdue maintenance forbids lending the tool.
// Low importance tools never block, and due-soon tools are still lendable.
func BlocksRental(tool *domain.Tool, today domain.Date) bool {
	if tool.MaintenanceImportance == domain.MaintenanceImportanceLow {
		return false
	}
	return IsMaintenanceExpired(tool, today)
}

// BuildMaintenanceView bundles a tool with its derived maintenance state.
func BuildMaintenanceView(tool *domain.Tool, today domain.Date) domain.ToolMaintenanceView {
	return domain.ToolMaintenanceView{
		Tool:              *tool,
		MaintenanceStatus: ClassifyMaintenance(tool, today),
		MaintenanceDueOn:  MaintenanceExpiration(tool),
		BlocksRental:      BlocksRental(tool, today),
	}
}
