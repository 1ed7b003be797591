package main

import (
	"context"
	"flag"
	"log"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/nightfury12901/restaurant-temp/internal/app"
	"github.com/nightfury12901/restaurant-temp/internal/config"
	"github.com/nightfury12901/restaurant-temp/internal/domain"
	"github.com/nightfury12901/restaurant-temp/internal/repository"
)

type demoGuest struct {
	dayOffset int
	slot      string
	party     int
	name      string
	email     string
	phone     string
	requests  string
	status    domain.ReservationStatus
}

var demoGuests = []demoGuest{
	{0, "18:00", 2, "Ada Lovelace", "ada@example.com", "+44 20 7946 0958", "Window seat please", domain.ReservationConfirmed},
	{0, "19:00", 4, "Alan Turing", "alan@example.com", "+44 20 7946 0011", "", domain.ReservationPending},
	{0, "19:00", 2, "Grace Hopper", "grace@example.com", "+1 202 555 0143", "Anniversary", domain.ReservationConfirmed},
	{1, "20:30", 6, "Edsger Dijkstra", "edsger@example.com", "+31 20 555 0101", "High chair needed", domain.ReservationPending},
	{1, "21:00", 3, "Barbara Liskov", "barbara@example.com", "+1 617 555 0199", "", domain.ReservationCancelled},
	{7, "18:30", 2, "Donald Knuth", "don@example.com", "+1 650 555 0188", "Vegetarian", domain.ReservationPending},
}

func main() {
	reset := flag.Bool("reset", false, "drop existing reservations before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := app.NewLogger(cfg.AppEnv)
	defer logger.Sync()

	ctx := context.Background()
	kv, closeKV, err := app.OpenKV(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}
	defer closeKV()

	store := repository.NewReservationStore(kv, logger, repository.WithKey(cfg.StoreKey))

	if *reset {
		if err := kv.Set(ctx, cfg.StoreKey, []byte("[]")); err != nil {
			logger.Fatal("reset failed", zap.Error(err))
		}
		logger.Info("cleared existing reservations")
	}

	today := time.Now().In(cfg.Location)
	for _, g := range demoGuests {
		r, err := store.Create(ctx, domain.NewReservation{
			Date:            today.AddDate(0, 0, g.dayOffset).Format("2006-01-02"),
			Time:            g.slot,
			PartySize:       g.party,
			Name:            g.name,
			Email:           g.email,
			Phone:           g.phone,
			SpecialRequests: g.requests,
		})
		if err != nil {
			logger.Fatal("create failed", zap.String("name", g.name), zap.Error(err))
		}
		if g.status != domain.ReservationPending {
			if _, _, err := store.UpdateStatus(ctx, r.ID, g.status); err != nil {
				logger.Fatal("status update failed", zap.String("id", r.ID), zap.Error(err))
			}
		}
		logger.Info("seeded reservation",
			zap.String("id", r.ID),
			zap.String("date", r.Date),
			zap.String("time", r.Time),
			zap.String("status", string(g.status)),
		)
	}

	logger.Info("seed complete", zap.Int("count", len(demoGuests)))
}
