// Command seed fills an empty database with demo rooms and problem reports.
package main

import (
	"context"
	"flag"
	"time"

	"hotel_ops/internal/logger"
	"hotel_ops/internal/models"
	"hotel_ops/internal/repository"
	"hotel_ops/internal/repository/db"
	"hotel_ops/internal/service"
)

type seedRoom struct {
	number          string
	state           string
	maintenanceDays int // days since last maintenance; -1 for never
}

var rooms = []seedRoom{
	{"101", models.RoomStateDirty, 70},
	{"102", models.RoomStateCheckout, 10},
	{"103", models.RoomStateClean, -1},
	{"104", models.RoomStateDirty, 76},
	{"105", models.RoomStateCheckout, 30},
}

var reports = []struct {
	room        string
	location    string
	description string
}{
	{"101", "", "Water leak under the bathroom sink"},
	{"102", "", "TV remote not working"},
	{"104", "", "Broken window latch, urgent"},
	{"", "Lobby", "Lamp flickering near reception"},
	{"", "Laundry", "Dryer making a loud noise"},
}

func main() {
	dbPath := flag.String("db", "hotel_ops.db", "sqlite database path")
	flag.Parse()

	log := logger.Get(logger.InfoLevel)

	sqlDB, err := db.InitDB(*dbPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repos := repository.NewRepository(sqlDB)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, r := range rooms {
		room := models.Room{Number: r.number, State: r.state}
		if r.maintenanceDays >= 0 {
			t := now.AddDate(0, 0, -r.maintenanceDays)
			room.LastMaintenance = &t
		}
		if _, err := repos.Rooms.Insert(ctx, room); err != nil {
			log.Fatalw("seed room failed", "room", r.number, "err", err)
		}
	}

	for _, p := range reports {
		_, err := repos.Reports.Create(ctx, models.ProblemReport{
			RoomNumber:      p.room,
			Location:        p.location,
			IsGeneralReport: p.room == "",
			Description:     p.description,
			Priority:        service.PriorityFor(p.description),
			ReportedAt:      now,
		})
		if err != nil {
			log.Fatalw("seed report failed", "description", p.description, "err", err)
		}
	}

	log.Infow("seed complete", "db", *dbPath, "rooms", len(rooms), "reports", len(reports))
}
