package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
)

// Prints the audit trail of one booking, oldest entry first
func main() {
	var dbURLFlag string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: booking-audit [-database-url URL] <booking-id>")
		os.Exit(2)
	}
	bookingID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		log.Fatalf("invalid booking id: %v", err)
	}

	_ = godotenv.Load()
	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	audits, err := database.NewBookingAuditRepository(db.DB, logrus.StandardLogger()).ListByBooking(ctx, bookingID)
	if err != nil {
		log.Fatalf("failed to load audit trail: %v", err)
	}
	if len(audits) == 0 {
		fmt.Printf("No audit entries for booking %s\n", bookingID)
		return
	}

	for _, a := range audits {
		user, ip := "-", "-"
		if a.UserID != nil {
			user = *a.UserID
		}
		if a.IPAddress != nil {
			ip = *a.IPAddress
		}
		fmt.Printf("%s | %-24s | %-12s | %-15s | %v\n",
			a.CreatedAt.Format(time.RFC3339), a.Action, user, ip, map[string]interface{}(a.Details))
	}
}
