package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/auth"
	noticeDatamodel "github.com/dcalliari/appe/internal/core/datamodel/notice"
	userDatamodel "github.com/dcalliari/appe/internal/core/datamodel/user"
	"github.com/dcalliari/appe/internal/notice"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with staff accounts, sample residents and notices for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if err := seedDatabase(gormDB, cfg.Security.BCryptCost, clearData); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

type seedUser struct {
	Apartment string
	Name      string
	Email     string
	Role      internal.Role
}

var seedUsers = []seedUser{
	{Apartment: "ADM", Name: "Síndico", Email: "admin@appe.local", Role: internal.RoleAdmin},
	{Apartment: "PORT", Name: "Portaria", Email: "portaria@appe.local", Role: internal.RoleDoorman},
	{Apartment: "101", Name: "Ana Souza", Email: "ana@appe.local", Role: internal.RoleResident},
	{Apartment: "102", Name: "Bruno Lima", Email: "bruno@appe.local", Role: internal.RoleResident},
}

type seedNotice struct {
	Title    string
	Content  string
	Type     string
	Priority string
	TTL      time.Duration
}

var seedNotices = []seedNotice{
	{
		Title:    "Manutenção do elevador",
		Content:  "O elevador social ficará parado na quinta-feira das 8h às 12h.",
		Type:     notice.TypeMaintenance,
		Priority: notice.PriorityHigh,
		TTL:      7 * 24 * time.Hour,
	},
	{
		Title:    "Assembleia geral",
		Content:  "Assembleia ordinária no salão de festas, primeira convocação às 19h.",
		Type:     notice.TypeMeeting,
		Priority: notice.PriorityMedium,
		TTL:      30 * 24 * time.Hour,
	},
	{
		Title:    "Coleta seletiva",
		Content:  "Lembramos que o lixo reciclável deve ser separado nas lixeiras azuis.",
		Type:     notice.TypeGeneral,
		Priority: notice.PriorityLow,
	},
}

// seedDatabase is idempotent: users are matched by apartment and notices by
// title, so running it twice adds nothing.
func seedDatabase(db *gorm.DB, bcryptCost int, clear bool) error {
	if clear {
		// children first so foreign keys hold
		for _, table := range []string{"chat_messages", "visitor_requests", "space_bookings", "documents", "notices", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		fmt.Println("Cleared existing data")
	}

	hash, err := auth.HashPassword(seedPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var adminID string
	for _, su := range seedUsers {
		var existing userDatamodel.User
		err := db.Where("apartment = ?", su.Apartment).First(&existing).Error
		switch {
		case err == nil:
			fmt.Println("user already exists:", su.Apartment)
		case errors.Is(err, gorm.ErrRecordNotFound):
			email := su.Email
			existing = userDatamodel.User{
				Apartment:    su.Apartment,
				Name:         su.Name,
				Email:        &email,
				PasswordHash: hash,
				Role:         string(su.Role),
			}
			if err := db.Create(&existing).Error; err != nil {
				return fmt.Errorf("insert user %s: %w", su.Apartment, err)
			}
			fmt.Printf("Seeded %s user: %s\n", su.Role, su.Apartment)
		default:
			return fmt.Errorf("lookup user %s: %w", su.Apartment, err)
		}
		if su.Role == internal.RoleAdmin {
			adminID = existing.ID
		}
	}

	now := time.Now()
	for _, sn := range seedNotices {
		var count int64
		if err := db.Model(&noticeDatamodel.Notice{}).Where("title = ?", sn.Title).Count(&count).Error; err != nil {
			return fmt.Errorf("lookup notice %q: %w", sn.Title, err)
		}
		if count > 0 {
			continue
		}

		row := noticeDatamodel.Notice{
			Title:     sn.Title,
			Content:   sn.Content,
			Type:      sn.Type,
			Priority:  sn.Priority,
			CreatedBy: &adminID,
		}
		if sn.TTL > 0 {
			expires := now.Add(sn.TTL)
			row.ExpiresAt = &expires
		}
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("insert notice %q: %w", sn.Title, err)
		}
		fmt.Println("Seeded notice:", sn.Title)
	}

	fmt.Printf("Seed complete. Every account uses the password %q\n", seedPassword)
	return nil
}
