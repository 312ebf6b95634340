package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/internal/repository"
	"github.com/noah-isme/faculty-leave-api/internal/service"
	"github.com/noah-isme/faculty-leave-api/pkg/config"
	"github.com/noah-isme/faculty-leave-api/pkg/database"
)

// devtoken signs a bearer token for local testing. With -lookup the identity is read
// from the users table, otherwise it is taken from the flags as given.
func main() {
	var (
		userID string
		role   string
		deptID string
		email  string
		name   string
		ttl    time.Duration
		lookup bool
	)

	flag.StringVar(&userID, "user", "", "User ID placed in the token")
	flag.StringVar(&role, "role", string(models.RoleFaculty), "Role: faculty, hod, central_admin or admin")
	flag.StringVar(&deptID, "dept", "", "Department ID")
	flag.StringVar(&email, "email", "", "Email address")
	flag.StringVar(&name, "name", "", "Display name")
	flag.DurationVar(&ttl, "ttl", 8*time.Hour, "Token lifetime")
	flag.BoolVar(&lookup, "lookup", false, "Load the user from the database instead of the flags")
	flag.Parse()

	if userID == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	user := models.User{ID: userID, Role: models.UserRole(role), DeptID: deptID, Email: email, FirstName: name}
	if lookup {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()

		found, err := repository.NewUserRepository(db).FindByID(ctx, userID)
		if err != nil {
			log.Fatalf("failed to load user %s: %v", userID, err)
		}
		user = *found
	}
	if !user.Role.Valid() {
		log.Fatalf("unknown role %q", user.Role)
	}

	token, err := service.NewTokenService(cfg.JWT).Issue(user, ttl)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
