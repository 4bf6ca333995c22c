package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/services"
)

// Deletes unpaid bookings older than -days. Unpaid rows never block dates,
// so this only reclaims space and declutters owner listings.
func main() {
	var (
		dbURLFlag string
		days      int
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.IntVar(&days, "days", 7, "delete unpaid bookings created more than this many days ago")
	flag.Parse()

	if days < 1 {
		log.Fatal("-days must be at least 1")
	}

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	logger := logrus.New()
	maxAge := time.Duration(days) * 24 * time.Hour
	purger := services.NewCronService(database.NewBookingRepository(db.DB), maxAge, "", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	purged, err := purger.PurgeNow(ctx)
	if err != nil {
		log.Fatalf("failed to purge unpaid bookings: %v", err)
	}

	fmt.Printf("Deleted %d unpaid bookings older than %d days.\n", purged, days)
}
