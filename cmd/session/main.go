// Команда session выпускает и отзывает токены сессий операторов.
//
//	session -actor 7 -role SUPERADMIN
//	session -revoke <token>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/config"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/infra/cache"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "путь к config.toml")
		actorID    = flag.Int64("actor", 0, "ID оператора")
		role       = flag.String("role", string(domain.RoleAdmin), "роль: ADMIN или SUPERADMIN")
		revoke     = flag.String("revoke", "", "отозвать токен")
	)
	flag.Parse()

	if err := run(*configPath, *actorID, *role, *revoke); err != nil {
		fmt.Fprintf(os.Stderr, "session: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, actorID int64, roleName, revoke string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer client.Close()

	sessions := cache.NewSessionStore(client, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.SessionTTLMin)*time.Minute)

	if revoke != "" {
		if err := sessions.Revoke(ctx, revoke); err != nil {
			return err
		}
		fmt.Println("revoked")
		return nil
	}

	if actorID <= 0 {
		return fmt.Errorf("-actor must be positive")
	}
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return err
	}

	token, err := sessions.Create(ctx, domain.Actor{ID: actorID, Role: role})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
