// seed inserts an admin user and a starter catalog into the local dev
// database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/zazaborisovi/laptomania/internal/infrastructure/postgres"
)

const (
	adminEmail    = "admin@laptomania.local"
	adminPassword = "admin-dev-password"
)

type laptopSpec struct {
	brand, model, processor, ram, storage, graphics, display, os string
	price                                                        float64
	stock                                                        int
}

var catalog = []laptopSpec{
	{"Lenovo", "ThinkPad X1 Carbon Gen 11", "Intel Core i7-1355U", "16GB", "512GB SSD", "Integrated", "14\" WUXGA", "Windows 11", 1649.99, 12},
	{"Apple", "MacBook Air 13 M3", "Apple M3", "16GB", "512GB SSD", "Integrated", "13.6\" Liquid Retina", "macOS", 1499.00, 20},
	{"Dell", "XPS 15 9530", "Intel Core i9-13900H", "32GB", "1TB SSD", "RTX 4060", "15.6\" OLED", "Windows 11", 2399.00, 6},
	{"ASUS", "ROG Zephyrus G14", "AMD Ryzen 9 7940HS", "32GB", "1TB SSD", "RTX 4070", "14\" QHD+ 165Hz", "Windows 11", 1999.99, 8},
	{"HP", "Pavilion 15", "Intel Core i5-1335U", "8GB", "256GB SSD", "Integrated", "15.6\" FHD", "Windows 11", 649.99, 30},
	{"Acer", "Swift 3", "AMD Ryzen 5 7530U", "16GB", "512GB SSD", "Integrated", "14\" FHD", "Windows 11", 699.00, 25},
	{"Framework", "Laptop 13", "Intel Core i5-1340P", "16GB", "512GB SSD", "Integrated", "13.5\" 3:2", "Linux", 1049.00, 10},
	{"MSI", "Katana 15", "Intel Core i7-13620H", "16GB", "1TB SSD", "RTX 4060", "15.6\" FHD 144Hz", "Windows 11", 1299.00, 9},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert admin, pre-verified
	var adminID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, is_verified)
		VALUES ('Admin', $1, $2, 'admin', TRUE)
		ON CONFLICT ((lower(email))) DO UPDATE SET role = 'admin', updated_at = NOW()
		RETURNING id`,
		adminEmail, string(hash),
	).Scan(&adminID)
	if err != nil {
		log.Fatalf("upsert admin: %v", err)
	}

	// Insert catalog rows, skip ones that already exist (idempotent re-runs)
	var inserted, skipped int
	for _, spec := range catalog {
		tag, err := pool.Exec(ctx, `
			INSERT INTO laptops (
				brand, model, processor, ram, storage, graphics,
				display, os, price, stock, description, is_available
			)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '', TRUE
			WHERE NOT EXISTS (
				SELECT 1 FROM laptops WHERE brand = $1 AND model = $2
			)`,
			spec.brand, spec.model, spec.processor, spec.ram, spec.storage,
			spec.graphics, spec.display, spec.os, spec.price, spec.stock,
		)
		if err != nil {
			log.Fatalf("insert laptop %s %s: %v", spec.brand, spec.model, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
		} else {
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Admin:           %s / %s\n", adminEmail, adminPassword)
	fmt.Printf("  Admin ID:        %s\n", adminID)
	fmt.Printf("  Laptops created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in and keep the session cookie:")
	fmt.Println()
	fmt.Printf("    curl -s -c cookies.txt -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", adminEmail, adminPassword)
	fmt.Println()
	fmt.Println("  Step 2 — browse the catalog (no auth needed):")
	fmt.Println()
	fmt.Println("    curl -s http://localhost:8080/laptops")
	fmt.Println()
	fmt.Println("  Step 3 — create a laptop with images (admin only):")
	fmt.Println()
	fmt.Println("    curl -s -b cookies.txt -X POST http://localhost:8080/laptops \\")
	fmt.Println("      -F brand=Lenovo -F model='Legion 5' -F processor='Ryzen 7 7735HS' \\")
	fmt.Println("      -F ram=16GB -F storage='1TB SSD' -F price=1399.99 -F stock=5 \\")
	fmt.Println("      -F images=@photo1.jpg -F images=@photo2.jpg")
}
