package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/service"
)

// Data is the content of a seed file.
type Data struct {
	Categories []string `yaml:"categories"`
	Users      []User   `yaml:"users"`
	Tools      []Tool   `yaml:"tools"`
}

type User struct {
	Name             string `yaml:"name"`
	Email            string `yaml:"email"`
	BadgeNumber      string `yaml:"badge_number"`
	Role             string `yaml:"role"`
	Password         string `yaml:"password"`
	MembershipExpiry string `yaml:"membership_expiry"`
}

type Tool struct {
	Title                     string `yaml:"title"`
	Category                  string `yaml:"category"`
	WeeklyPriceCents          int32  `yaml:"weekly_price_cents"`
	PurchasePriceCents        int32  `yaml:"purchase_price_cents"`
	PurchaseDate              string `yaml:"purchase_date"`
	LastMaintenanceDate       string `yaml:"last_maintenance_date"`
	MaintenanceIntervalMonths int32  `yaml:"maintenance_interval_months"`
	MaintenanceImportance     string `yaml:"maintenance_importance"`
}

// Result counts what a run created and what already existed.
type Result struct {
	CategoriesCreated int
	UsersCreated      int
	UsersSkipped      int
	ToolsCreated      int
	ToolsSkipped      int
}

// Load reads a seed file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &data, nil
}

// Seeder creates categories, accounts and tools through the services so the
// same validation and password hashing apply as for API-created records.
// Running it twice leaves existing records alone.
type Seeder struct {
	categories service.CategoryService
	users      service.UserService
	tools      service.ToolService
}

func NewSeeder(categories service.CategoryService, users service.UserService, tools service.ToolService) *Seeder {
	return &Seeder{categories: categories, users: users, tools: tools}
}

func (s *Seeder) Run(ctx context.Context, data *Data) (Result, error) {
	var res Result

	categoryIDs, err := s.seedCategories(ctx, data, &res)
	if err != nil {
		return res, err
	}
	if err := s.seedUsers(ctx, data.Users, &res); err != nil {
		return res, err
	}
	if err := s.seedTools(ctx, data.Tools, categoryIDs, &res); err != nil {
		return res, err
	}
	return res, nil
}

// seedCategories returns every known category id keyed by lower-cased name.
func (s *Seeder) seedCategories(ctx context.Context, data *Data, res *Result) (map[string]int32, error) {
	existing, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	ids := make(map[string]int32, len(existing))
	for _, c := range existing {
		ids[strings.ToLower(c.Name)] = c.ID
	}

	names := append([]string{}, data.Categories...)
	for _, t := range data.Tools {
		names = append(names, t.Category)
	}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := ids[key]; ok {
			continue
		}
		c, err := s.categories.CreateCategory(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("create category %q: %w", name, err)
		}
		ids[key] = c.ID
		res.CategoriesCreated++
		logger.Info("Category created", "id", c.ID, "name", c.Name)
	}
	return ids, nil
}

func (s *Seeder) seedUsers(ctx context.Context, users []User, res *Result) error {
	for _, u := range users {
		expiry, err := optionalDate(u.MembershipExpiry)
		if err != nil {
			return fmt.Errorf("user %s: membership_expiry: %w", u.Email, err)
		}
		user := &domain.User{
			Name:             u.Name,
			Email:            u.Email,
			BadgeNumber:      u.BadgeNumber,
			Role:             domain.UserRole(u.Role),
			MembershipExpiry: expiry,
		}
		if err := s.users.CreateUser(ctx, user, u.Password); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				res.UsersSkipped++
				logger.Info("User already exists", "email", u.Email)
				continue
			}
			return fmt.Errorf("create user %s: %w", u.Email, err)
		}
		res.UsersCreated++
		logger.Info("User created", "id", user.ID, "email", user.Email, "role", user.Role)
	}
	return nil
}

func (s *Seeder) seedTools(ctx context.Context, tools []Tool, categoryIDs map[string]int32, res *Result) error {
	titles := make(map[int32]map[string]bool)
	for _, t := range tools {
		categoryID := categoryIDs[strings.ToLower(strings.TrimSpace(t.Category))]
		if categoryID == 0 {
			return fmt.Errorf("tool %q: category is required", t.Title)
		}

		if titles[categoryID] == nil {
			known, err := s.toolTitles(ctx, categoryID)
			if err != nil {
				return err
			}
			titles[categoryID] = known
		}
		if titles[categoryID][strings.ToLower(t.Title)] {
			res.ToolsSkipped++
			continue
		}

		tool, err := t.toDomain(categoryID)
		if err != nil {
			return err
		}
		if err := s.tools.AddTool(ctx, tool); err != nil {
			return fmt.Errorf("create tool %q: %w", t.Title, err)
		}
		titles[categoryID][strings.ToLower(t.Title)] = true
		res.ToolsCreated++
		logger.Info("Tool created", "id", tool.ID, "title", tool.Title)
	}
	return nil
}

func (s *Seeder) toolTitles(ctx context.Context, categoryID int32) (map[string]bool, error) {
	known := make(map[string]bool)
	const pageSize = 200
	for page := int32(1); ; page++ {
		views, total, err := s.tools.ListTools(ctx, domain.ToolFilter{CategoryID: categoryID, Page: page, PageSize: pageSize})
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		for _, v := range views {
			known[strings.ToLower(v.Tool.Title)] = true
		}
		if len(views) < pageSize || page*pageSize >= total {
			return known, nil
		}
	}
}

func (t Tool) toDomain(categoryID int32) (*domain.Tool, error) {
	purchased, err := optionalDate(t.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("tool %q: purchase_date: %w", t.Title, err)
	}
	serviced, err := optionalDate(t.LastMaintenanceDate)
	if err != nil {
		return nil, fmt.Errorf("tool %q: last_maintenance_date: %w", t.Title, err)
	}
	tool := &domain.Tool{
		Title:                 t.Title,
		CategoryID:            categoryID,
		WeeklyPriceCents:      t.WeeklyPriceCents,
		PurchasePriceCents:    t.PurchasePriceCents,
		PurchaseDate:          purchased,
		LastMaintenanceDate:   serviced,
		MaintenanceImportance: domain.MaintenanceImportance(t.MaintenanceImportance),
	}
	if t.MaintenanceIntervalMonths > 0 {
		months := t.MaintenanceIntervalMonths
		tool.MaintenanceIntervalMonths = &months
	}
	return tool, nil
}

func optionalDate(s string) (*domain.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &d, nil
}
