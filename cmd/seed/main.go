package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"farmverify/internal/auth"
	"farmverify/internal/config"
	"farmverify/internal/db"
	"farmverify/internal/logger"
	"farmverify/internal/model"
	"farmverify/internal/repository"
)

type demoFarmer struct {
	Name     string
	Email    string
	FarmSize string
	CropType string
}

var demoFarmers = []demoFarmer{
	{Name: "John Kamau", Email: "john.kamau@example.com", FarmSize: "5.5", CropType: "Maize"},
	{Name: "Mary Wanjiku", Email: "mary.wanjiku@example.com", FarmSize: "3.2", CropType: "Coffee"},
	{Name: "Peter Omondi", Email: "peter.omondi@example.com", FarmSize: "8.0", CropType: "Tea"},
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gormDB, err := db.NewMySQL(db.DSN(cfg))
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}

	users := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	admin, err := seedUser(ctx, users, "admin@tradecare.com", "admin123", cfg.BcryptCost, func(u *model.User) {
		u.Role = model.RoleAdmin
		u.Admin = &model.Admin{Name: "System Administrator"}
	})
	if err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}
	log.Info("seeded admin user", zap.String("email", admin.Email))

	for _, f := range demoFarmers {
		size := decimal.RequireFromString(f.FarmSize)
		user, err := seedUser(ctx, users, f.Email, "farmer123", cfg.BcryptCost, func(u *model.User) {
			u.Role = model.RoleFarmer
			u.Farmer = &model.Farmer{
				Name:                f.Name,
				FarmSize:            size,
				CropType:            f.CropType,
				CertificationStatus: model.StatusPending,
			}
		})
		if err != nil {
			log.Fatal("seed farmer", zap.String("email", f.Email), zap.Error(err))
		}
		log.Info("seeded farmer", zap.String("email", user.Email))
	}
}

// seedUser creates the user when email is unknown. Existing users are left
// untouched so reseeding never resets passwords or decisions.
func seedUser(ctx context.Context, repo repository.UserRepository, email, password string, cost int, build func(*model.User)) (*model.User, error) {
	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking user %s: %w", email, err)
	}

	hashed, err := auth.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	user := &model.User{Email: email, PasswordHash: hashed}
	build(user)
	if err := repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user %s: %w", email, err)
	}
	return user, nil
}
