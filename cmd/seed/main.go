package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/leadpilot/leadpilot/internal/users"
)

var firstNames = []string{
	"Ava", "Liam", "Emma", "Noah", "Olivia", "Elijah", "Sophia", "Lucas", "Isabella", "Mason",
	"Mia", "Ethan", "Amelia", "Logan", "Harper", "James", "Evelyn", "Benjamin", "Abigail", "Henry",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
}

var companies = []string{
	"Acme Corp", "Globex", "Initech", "Umbrella", "Stark Industries", "Wayne Enterprises", "Hooli", "Vandelay",
	"Soylent", "Oscorp", "Wonka", "Aperture", "Cyberdyne", "Nakatomi", "Tyrell", "Gringotts", "Pied Piper", "Monsters Inc",
}

var cities = []string{
	"New York", "San Francisco", "Austin", "Seattle", "Chicago", "Los Angeles", "Denver", "Miami", "Boston", "Atlanta",
}

var states = []string{"NY", "CA", "TX", "WA", "IL", "CO", "FL", "MA", "GA", "AZ", "NC", "VA", "PA"}

var sources = []string{"website", "facebook_ads", "google_ads", "referral", "events", "other"}

var statuses = []string{"new", "contacted", "qualified", "lost", "won"}

func main() {
	_ = godotenv.Load()

	count := flag.Int("count", 120, "number of leads to insert")
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	if err := ensureTestUser(ctx, pool); err != nil {
		log.Fatalf("ensure test user: %v", err)
	}

	inserted, failed := seedLeads(ctx, pool, *count)
	fmt.Printf("Inserted %d leads, %d duplicates or errors.\n", inserted, failed)
}

// ensureTestUser creates the seed login user unless it already exists.
func ensureTestUser(ctx context.Context, pool *pgxpool.Pool) error {
	email := os.Getenv("SEED_USER_EMAIL")
	password := os.Getenv("SEED_USER_PASSWORD")
	fullName := os.Getenv("SEED_USER_FULLNAME")
	if email == "" || password == "" {
		fmt.Println("SEED_USER_EMAIL/SEED_USER_PASSWORD not set, skipping test user")
		return nil
	}
	if fullName == "" {
		fullName = "Seed User"
	}

	repo := users.NewPostgresRepository(pool)
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		fmt.Printf("Test user already exists: %s\n", email)
		return nil
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := repo.Create(ctx, email, fullName, string(hash)); err != nil {
		return err
	}
	fmt.Printf("Created test user: %s\n", email)
	return nil
}

// seedLeads inserts count random leads dated within the last 180 days.
// Rows are inserted one at a time so a duplicate does not abort the rest.
func seedLeads(ctx context.Context, pool *pgxpool.Pool, count int) (inserted, failed int) {
	now := time.Now()

	for i := 0; i < count; i++ {
		status := statuses[rand.IntN(len(statuses))]
		createdAt := randomDateBetween(now.AddDate(0, 0, -180), now)

		var lastActivity *time.Time
		if rand.Float64() < 0.8 {
			t := randomDateBetween(createdAt, now)
			lastActivity = &t
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO leads (id, first_name, last_name, email, phone, company, city, state,
				source, status, score, lead_value, last_activity_at, is_qualified,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`,
			uuid.NewString(),
			firstNames[rand.IntN(len(firstNames))],
			lastNames[rand.IntN(len(lastNames))],
			fmt.Sprintf("lead_%d_%d@seed.local", now.UnixMilli(), i),
			randomPhone(),
			companies[rand.IntN(len(companies))],
			cities[rand.IntN(len(cities))],
			states[rand.IntN(len(states))],
			sources[rand.IntN(len(sources))],
			status,
			rand.IntN(101),
			float64(100+rand.IntN(99901)),
			lastActivity,
			status == "qualified" || status == "won",
			createdAt,
		)
		if err != nil {
			failed++
			continue
		}
		inserted++
	}
	return inserted, failed
}

func randomPhone() string {
	return fmt.Sprintf("%d-%d-%d", 200+rand.IntN(800), 200+rand.IntN(800), 1000+rand.IntN(9000))
}

func randomDateBetween(start, end time.Time) time.Time {
	delta := end.Sub(start)
	if delta <= 0 {
		return start
	}
	return start.Add(time.Duration(rand.Int64N(int64(delta))))
}
