// Command seeduser creates or resets the bootstrap admin account.
//
//	go run ./cmd/seeduser -username admin -password change-me
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"beautypos/internal/config"
	"beautypos/internal/infra"
	"beautypos/internal/model"
	"beautypos/internal/repository"
	"beautypos/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "login name")
	password := flag.String("password", "", "password (min 8 chars)")
	name := flag.String("name", "Administrator", "display name")
	role := flag.String("role", string(model.RoleAdmin), "admin | manager | employee")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal().Msg("-password must be at least 8 characters")
	}
	r, err := model.ParseRole(*role)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -role")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), service.PasswordCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	u, err := users.FindByIdentifier(ctx, *username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.User{Username: *username, Name: *name, PasswordHash: string(hash), Role: r, Active: true}
		err = users.Create(ctx, u)
	case err == nil:
		u.Name, u.PasswordHash, u.Role, u.Active = *name, string(hash), r, true
		err = users.Update(ctx, u)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to save user")
	}
	log.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("user created or reset")
}
