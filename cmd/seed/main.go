package main

import (
	"log"
	"os"

	"portfolio-notes-be/internal/model"
	"portfolio-notes-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo user with a mix of public and private notes so the
// portfolio page has content to render on a fresh database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo data...")

	email := getEnvOr("SEED_EMAIL", "demo@example.com")
	password := getEnvOr("SEED_PASSWORD", "demo-password")

	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		color.Yellow("User %s already exists, skipping user creation", email)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Error: failed to hash password: %v", err)
		}
		hashStr := string(hash)

		user = model.User{
			Email:        email,
			PasswordHash: &hashStr,
			FullName:     "Demo User",
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("Error: failed to create user: %v", err)
		}
		color.Green("Created user %s", email)
	}

	notes := []model.Note{
		{
			Title:    "Hello from the portfolio",
			Content:  "This note is public and shows up on the homepage.",
			IsPublic: true,
			UserId:   user.Id,
		},
		{
			Title:    "Reading list",
			Content:  "Designing Data-Intensive Applications, The Go Programming Language.",
			IsPublic: true,
			UserId:   user.Id,
		},
		{
			Title:    "Private scratchpad",
			Content:  "Only visible to the owner.",
			IsPublic: false,
			UserId:   user.Id,
		},
	}

	for _, n := range notes {
		var count int64
		db.Model(&model.Note{}).Where("user_id = ? AND title = ?", user.Id, n.Title).Count(&count)
		if count > 0 {
			color.Yellow("Note %q already exists, skipping", n.Title)
			continue
		}
		if err := db.Create(&n).Error; err != nil {
			color.Red("Failed to create note %q: %v", n.Title, err)
			continue
		}
		color.Green("Created note %q (public=%v)", n.Title, n.IsPublic)
	}

	color.Cyan("Seeding done.")
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
