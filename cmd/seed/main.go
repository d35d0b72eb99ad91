// Command seed populates a development database with demo users and chat
// traffic.
package main

import (
	"flag"
	"log"

	"bullpen/internal/config"
	"bullpen/internal/database"
	"bullpen/internal/observability"
	"bullpen/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create")
	flag.IntVar(&opts.MessagesPerUser, "messages", opts.MessagesPerUser, "messages per user")
	flag.IntVar(&opts.Rooms, "rooms", opts.Rooms, "number of chat rooms to spread messages across")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.InitLogging(cfg.Env)

	if cfg.Env == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
