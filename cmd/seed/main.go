package main

import (
	"context"

	"hotel/config"
	"hotel/helper"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	roomRepository "hotel/internal/domains/room/repository"
	userRepository "hotel/internal/domains/user/repository"
	"hotel/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	db := postgres.New(cfg)
	ot := otel.New(cfg)

	seeder := helper.NewSeeder(cfg, userRepository.New(db, ot), roomRepository.New(db, ot))

	if err := seeder.Seed(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().Msg("Seeding completed")
}
