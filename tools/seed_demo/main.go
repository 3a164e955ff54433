package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type config struct {
	dsn           string
	partnerCount  int
	bookingsPer   int
	month         string
	bookingsTable string
	profilesTable string
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.partnerCount <= 0 {
		log.Fatal("partner-count must be > 0")
	}

	monthStart, err := time.Parse("2006-01", cfg.month)
	if err != nil {
		log.Fatalf("invalid month: %v", err)
	}
	monthStart = monthStart.UTC()

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	plans := []string{"private", "basic", "premium"}

	log.Printf("seeding %d fleet partners with up to %d bookings each for %s", cfg.partnerCount, cfg.bookingsPer, cfg.month)
	for i := 0; i < cfg.partnerCount; i++ {
		partnerID := uuid.NewString()
		plan := plans[i%len(plans)]
		email := fmt.Sprintf("partner%03d@example.com", i)
		company := fmt.Sprintf("Demo Fleet %03d ApS", i)

		_, err := db.ExecContext(ctx, `
INSERT INTO `+cfg.profilesTable+` (id, email, full_name, company_name, fleet_plan)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`, partnerID, email, "", company, plan)
		if err != nil {
			log.Fatalf("seed partner: %v", err)
		}

		// a share of partners stays idle to exercise zero-activity settlements
		bookings := rand.Intn(cfg.bookingsPer + 1)
		for j := 0; j < bookings; j++ {
			endDate := monthStart.AddDate(0, 0, rand.Intn(28)).Add(time.Duration(rand.Intn(24)) * time.Hour)
			price := 200 + rand.Intn(2800)
			status := "completed"
			if j%5 == 4 {
				status = "cancelled"
			}
			_, err := db.ExecContext(ctx, `
INSERT INTO `+cfg.bookingsTable+` (id, lessor_id, status, total_price, end_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.NewString(), partnerID, status, price, endDate, endDate.AddDate(0, 0, -rand.Intn(10)))
			if err != nil {
				log.Fatalf("seed booking: %v", err)
			}
		}
	}
	log.Print("seed done")
}

func parseConfig() config {
	var cfg config
	flag.StringVar(&cfg.dsn, "dsn", envDefault("PG_DSN", os.Getenv("DATABASE_URL")), "postgres dsn")
	flag.IntVar(&cfg.partnerCount, "partner-count", 25, "partners to seed")
	flag.IntVar(&cfg.bookingsPer, "bookings-per", 12, "max bookings per partner")
	flag.StringVar(&cfg.month, "month", time.Now().UTC().AddDate(0, -1, 0).Format("2006-01"), "booking month")
	flag.StringVar(&cfg.bookingsTable, "bookings-table", "bookings", "bookings table")
	flag.StringVar(&cfg.profilesTable, "profiles-table", "profiles", "profiles table")
	flag.Parse()
	return cfg
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
