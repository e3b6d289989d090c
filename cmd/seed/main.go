// Command seed loads the guest list into the database from a plain text
// file, one guest name per line. Blank lines and lines starting with '#'
// are skipped. Existing guests are left untouched, so the seed is safe to
// re-run after editing the list.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"wedding-invitation-backend/internal/config"
	"wedding-invitation-backend/internal/database"
	"wedding-invitation-backend/internal/model"
	"wedding-invitation-backend/internal/repository"
)

func main() {
	file := flag.String("file", "guests.txt", "path to the guest list, one name per line")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open guest list: %v", err)
	}
	defer f.Close()

	guestRepo := repository.NewGuestRepository(db)
	ctx := context.Background()

	var created, skipped int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}

		guest := &model.Guest{Name: name}
		err := guestRepo.Create(ctx, guest)
		if errors.Is(err, model.ErrGuestExists) {
			skipped++
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create guest %q: %v", name, err)
		}
		created++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read guest list: %v", err)
	}

	log.Printf("[Seed] Guest list loaded: %d created, %d already present", created, skipped)
}
