package http

import (
	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/utils"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user,omitempty"`
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type toolRequest struct {
	Title                     string       `json:"title" validate:"required,max=200"`
	CategoryID                int32        `json:"category_id" validate:"required,gt=0"`
	WeeklyPriceCents          int32        `json:"weekly_price_cents" validate:"gte=0"`
	PurchasePriceCents        int32        `json:"purchase_price_cents" validate:"gte=0"`
	PurchaseDate              *domain.Date `json:"purchase_date"`
	LastMaintenanceDate       *domain.Date `json:"last_maintenance_date"`
	MaintenanceIntervalMonths *int32       `json:"maintenance_interval_months" validate:"omitempty,gt=0"`
	MaintenanceImportance     string       `json:"maintenance_importance" validate:"omitempty,oneof=low medium high"`
}

func (req toolRequest) toDomain(id int32) *domain.Tool {
	return &domain.Tool{
		ID:                        id,
		Title:                     req.Title,
		CategoryID:                req.CategoryID,
		WeeklyPriceCents:          req.WeeklyPriceCents,
		PurchasePriceCents:        req.PurchasePriceCents,
		PurchaseDate:              req.PurchaseDate,
		LastMaintenanceDate:       req.LastMaintenanceDate,
		MaintenanceIntervalMonths: req.MaintenanceIntervalMonths,
		MaintenanceImportance:     domain.MaintenanceImportance(req.MaintenanceImportance),
	}
}

type toolStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available maintenance unavailable"`
}

type maintenanceRequest struct {
	ServicedOn *domain.Date `json:"serviced_on"`
}

type userRequest struct {
	Name             string       `json:"name" validate:"required,max=200"`
	Email            string       `json:"email" validate:"required,email"`
	BadgeNumber      string       `json:"badge_number" validate:"max=50"`
	Role             string       `json:"role" validate:"omitempty,oneof=member staff admin"`
	MembershipExpiry *domain.Date `json:"membership_expiry"`
	Password         string       `json:"password" validate:"omitempty,min=8"`
}

func (req userRequest) toDomain(id int32) *domain.User {
	return &domain.User{
		ID:               id,
		Name:             req.Name,
		Email:            req.Email,
		BadgeNumber:      req.BadgeNumber,
		Role:             domain.UserRole(req.Role),
		MembershipExpiry: req.MembershipExpiry,
	}
}

type userStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended archived"`
}

type renewRequest struct {
	Months   int32 `json:"months" validate:"required,gt=0,lte=120"`
	FeeCents int32 `json:"fee_cents" validate:"gte=0"`
}

type createRentalRequest struct {
	UserID             int32        `json:"user_id" validate:"gte=0"`
	ToolID             int32        `json:"tool_id" validate:"required,gt=0"`
	StartDate          *domain.Date `json:"start_date" validate:"required"`
	EndDate            *domain.Date `json:"end_date" validate:"required"`
	PriceOverrideCents *int32       `json:"price_override_cents" validate:"omitempty,gte=0"`
	Activate           bool         `json:"activate"`
}

type activateRequest struct {
	PriceOverrideCents *int32 `json:"price_override_cents" validate:"omitempty,gte=0"`
}

type returnRequest struct {
	Comment string `json:"comment" validate:"max=1000"`
}

type transactionRequest struct {
	UserID      int32  `json:"user_id" validate:"required,gt=0"`
	RentalID    *int32 `json:"rental_id" validate:"omitempty,gt=0"`
	AmountCents int32  `json:"amount_cents" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required,oneof=MembershipFee RepairCost Payment"`
	Method      string `json:"method" validate:"omitempty,oneof=card check cash"`
	Description string `json:"description" validate:"max=500"`
}

func (req transactionRequest) toDomain() *domain.Transaction {
	return &domain.Transaction{
		UserID:      req.UserID,
		RentalID:    req.RentalID,
		AmountCents: req.AmountCents,
		Type:        domain.TransactionType(req.Type),
		Method:      domain.PaymentMethod(req.Method),
		Description: req.Description,
	}
}

type payRequest struct {
	Method string `json:"method" validate:"required,oneof=card check cash"`
}

type quoteResponse struct {
	ToolID int32                      `json:"tool_id"`
	Start  domain.Date                `json:"start_date"`
	End    domain.Date                `json:"end_date"`
	Cost   *utils.RentalCostBreakdown `json:"cost"`
}
