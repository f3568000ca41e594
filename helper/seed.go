package helper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel/config"
	roomModel "hotel/internal/domains/room/model"
	roomRepository "hotel/internal/domains/room/repository"
	userModel "hotel/internal/domains/user/model"
	userRepository "hotel/internal/domains/user/repository"
	"hotel/shared/constant"
	"hotel/shared/model"
	"hotel/shared/password"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const seedActor = "seed"

// DefaultRooms is the room catalogue a fresh installation starts with.
var DefaultRooms = []roomModel.Room{
	{
		Name:         "Single Suite",
		Description:  "Cozy and comfortable room with a single bed, perfect for solo travelers.",
		Price:        decimal.NewFromInt(129),
		Size:         25,
		MaxOccupancy: 1,
		Amenities:    pq.StringArray{"Free WiFi", "Smart TV", "Air Conditioning", "Coffee Maker"},
		IsActive:     true,
	},
	{
		Name:         "Standard Suite",
		Description:  "Spacious room with a queen-size bed, ideal for couples or business travelers.",
		Price:        decimal.NewFromInt(189),
		Size:         35,
		MaxOccupancy: 2,
		Amenities:    pq.StringArray{"Free WiFi", "Smart TV", "Air Conditioning", "Coffee Maker", "Mini Bar"},
		IsActive:     true,
	},
	{
		Name:         "Executive Suite",
		Description:  "Luxurious suite with a king-size bed and separate living area.",
		Price:        decimal.NewFromInt(259),
		Size:         50,
		MaxOccupancy: 2,
		Amenities:    pq.StringArray{"Free WiFi", "Smart TV", "Air Conditioning", "Coffee Maker", "Mini Bar", "Ocean View"},
		IsActive:     true,
	},
}

type Seeder struct {
	cfg   *config.Config
	users userRepository.User
	rooms roomRepository.Room
}

func NewSeeder(cfg *config.Config, users userRepository.User, rooms roomRepository.Room) *Seeder {
	return &Seeder{cfg: cfg, users: users, rooms: rooms}
}

// Seed inserts the default rooms and staff accounts. Rows matched by name or email are left
// untouched, so running it twice changes nothing.
func (s *Seeder) Seed(ctx context.Context) error {
	for _, room := range DefaultRooms {
		if err := s.seedRoom(ctx, room); err != nil {
			return err
		}
	}

	staff := []struct {
		email    string
		password string
		fullName string
		role     string
	}{
		{s.cfg.App.Seed.AdminEmail, s.cfg.App.Seed.AdminPassword, "Administrator", constant.RoleAdmin},
		{s.cfg.App.Seed.ReceptionistEmail, s.cfg.App.Seed.ReceptionistPassword, "Front Desk", constant.RoleReceptionist},
	}

	for _, account := range staff {
		if account.email == constant.Empty || account.password == constant.Empty {
			log.Warn().Str("role", account.role).Msg("seed credentials not configured, skipping account")

			continue
		}

		if err := s.seedUser(ctx, account.email, account.password, account.fullName, account.role); err != nil {
			return err
		}
	}

	return nil
}

func (s *Seeder) seedRoom(ctx context.Context, room roomModel.Room) error {
	exists, err := s.rooms.NameExists(ctx, room.Name)
	if err != nil {
		return fmt.Errorf("failed to look up room %q: %w", room.Name, err)
	}

	if exists {
		log.Info().Str("room", room.Name).Msg("room already seeded")

		return nil
	}

	room.Metadata = metadata()

	id, err := s.rooms.Insert(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to seed room %q: %w", room.Name, err)
	}

	log.Info().Str("room", room.Name).Int64("id", id).Msg("room seeded")

	return nil
}

func (s *Seeder) seedUser(ctx context.Context, email, plain, fullName, role string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user %q: %w", email, err)
	}

	if exists {
		log.Info().Str("email", email).Msg("user already seeded")

		return nil
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return fmt.Errorf("failed to hash password for %q: %w", email, err)
	}

	user := userModel.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: hash,
		FullName: fullName,
		Role:     role,
		Active:   true,
		IsStaff:  true,
		Metadata: metadata(),
	}

	if err = s.users.Insert(ctx, user); err != nil {
		return fmt.Errorf("failed to seed user %q: %w", email, err)
	}

	log.Info().Str("email", email).Str("role", role).Msg("user seeded")

	return nil
}

func metadata() model.Metadata {
	now := time.Now()

	return model.Metadata{
		CreatedAt:  now,
		ModifiedAt: now,
		CreatedBy:  seedActor,
		ModifiedBy: seedActor,
	}
}
