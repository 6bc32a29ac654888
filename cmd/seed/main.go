package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bugtrack/internal/config"
	"bugtrack/internal/db"
	"bugtrack/internal/model"
	"bugtrack/internal/repository"
)

const seedPassword = "password123"

type seedUser struct {
	Username string
	Email    string
}

var seedUsers = []seedUser{
	{Username: "alice", Email: "alice@example.com"},
	{Username: "bob", Email: "bob@example.com"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	bugRepo := repository.NewBugRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	users := make([]*model.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		user, err := seedOneUser(ctx, userRepo, su)
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", su.Email, err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users (password %q)", len(users), seedPassword)

	bugs := []model.Bug{
		{
			Title:       "Crash on save",
			Description: "App crashes when saving a report with no steps filled in",
			Status:      model.BugStatusOpen,
			Priority:    model.BugPriorityHigh,
			Project:     "Backend",
			StepsToReproduce: model.StringList{
				"Open the new bug form",
				"Leave steps empty",
				"Press save",
			},
			Environment: model.Environment{OS: "macOS 14", Browser: "Firefox", Version: "130"},
			ReporterID:  users[0].ID,
		},
		{
			Title:       "List ignores mine filter",
			Description: "The mine=true filter returns everyone's bugs when logged in",
			Status:      model.BugStatusInProgress,
			Priority:    model.BugPriorityMedium,
			Project:     "API",
			ReporterID:  users[1].ID,
		},
	}
	for i := range bugs {
		if err := bugRepo.Create(ctx, &bugs[i]); err != nil {
			log.Fatalf("Failed to seed bug %q: %v", bugs[i].Title, err)
		}
	}
	log.Printf("Seeded %d bugs", len(bugs))

	posts := []model.Post{
		{
			Title:     "Release notes, week one",
			Content:   "A short summary of what landed in the first week of the tracker.",
			Category:  "announcements",
			Slug:      "release-notes-week-one",
			Published: true,
			AuthorID:  users[0].ID,
		},
	}
	for i := range posts {
		if err := postRepo.Create(ctx, &posts[i]); err != nil {
			log.Fatalf("Failed to seed post %q: %v", posts[i].Title, err)
		}
	}
	log.Printf("Seeded %d posts", len(posts))

	log.Println("Seed completed")
}

// seedOneUser creates the user unless it already exists, so rerunning the
// script does not duplicate identities.
func seedOneUser(ctx context.Context, repo repository.UserRepository, su seedUser) (*model.User, error) {
	existing, err := repo.FindByEmail(ctx, su.Email)
	if err == nil {
		log.Printf("User %s already exists, skipping", su.Email)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     su.Username,
		Email:        su.Email,
		PasswordHash: string(hashed),
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
