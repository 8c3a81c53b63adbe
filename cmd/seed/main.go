package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/inventory/internal/adapter/storage"
	"github.com/rl1809/inventory/internal/config"
	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/core/service"
)

var (
	adjectives = []string{"Wireless", "Ergonomic", "Compact", "Heavy Duty", "Portable", "Smart", "Classic"}
	nouns      = []string{"Mouse", "Keyboard", "Monitor", "Lamp", "Chair", "Speaker", "Cable", "Desk"}
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	count := flag.Int("n", 50, "number of products to generate")
	flag.Parse()

	if *count < 0 {
		log.Fatalf("-n must be >= 0")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer backend.Close()

	inventory := service.NewInventoryService(backend.Repository)
	if _, err := inventory.Load(ctx); err != nil {
		log.Fatalf("failed to load inventory: %v", err)
	}
	before := inventory.Len()

	start := time.Now()
	for i := 0; i < *count; i++ {
		p, err := randomProduct()
		if err != nil {
			log.Fatalf("failed to build product: %v", err)
		}
		if err := inventory.Add(p); err != nil {
			log.Fatalf("failed to add product %s: %v", p.ID, err)
		}
	}

	if err := inventory.Save(ctx); err != nil {
		log.Fatalf("failed to save inventory: %v", err)
	}
	elapsed := time.Since(start)

	summary := inventory.Summary()
	fmt.Println("============== SEED RESULTS ==============")
	fmt.Printf("Backend:          %s\n", backend.Name)
	fmt.Printf("Products before:  %d\n", before)
	fmt.Printf("Generated:        %d\n", *count)
	fmt.Printf("Products after:   %d\n", summary.Distinct)
	fmt.Printf("Total units:      %d\n", summary.Units)
	fmt.Printf("Total value:      $%.2f\n", summary.TotalValue)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")
}

func randomProduct() (domain.Product, error) {
	name := adjectives[rand.Intn(len(adjectives))] + " " + nouns[rand.Intn(len(nouns))]
	price := math.Round(rand.Float64()*50000) / 100
	return domain.NewProduct(uuid.NewString(), name, rand.Intn(100), price)
}
