package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/noah-isme/ecom-api/internal/auth"
)

const devPassword = "password123"

type seedUser struct {
	Name  string
	Email string
	Role  string
}

type seedProduct struct {
	Title    string
	Price    string
	Discount sql.NullString
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	ids := seedUsers(db)
	seedStores(db, ids)
	printTokens(ids)

	log.Println("Seeding completed successfully!")
}

func seedUsers(db *sql.DB) map[string]int64 {
	users := []seedUser{
		{"Admin User", "admin@ecom.local", "ADMIN"},
		{"Nguyen Van Ban", "seller.ban@ecom.local", "SELLER"},
		{"Tran Thi Ha", "seller.ha@ecom.local", "SELLER"},
		{"Le Minh Khoa", "khoa@example.com", "USER"},
		{"Pham Thu Trang", "trang@example.com", "USER"},
	}

	hash, err := auth.HashPassword(devPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println("Seeding Users...")
	ids := make(map[string]int64, len(users))
	for _, u := range users {
		var id int64
		err := db.QueryRow(`
			INSERT INTO users (full_name, email, password_hash, role)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
			RETURNING id;
		`, u.Name, u.Email, hash, u.Role).Scan(&id)
		if err != nil {
			log.Printf("Failed to seed user %s: %v", u.Email, err)
			continue
		}
		ids[u.Email] = id
	}
	return ids
}

func seedStores(db *sql.DB, users map[string]int64) {
	catalog := map[string]struct {
		Store    string
		Products []seedProduct
	}{
		"seller.ban@ecom.local": {
			Store: "Ban Fashion",
			Products: []seedProduct{
				{Title: "Ao thun cotton", Price: "100000.00", Discount: sql.NullString{String: "10", Valid: true}},
				{Title: "Quan jean", Price: "350000.00"},
				{Title: "Non la", Price: "45000.00", Discount: sql.NullString{String: "5.5", Valid: true}},
			},
		},
		"seller.ha@ecom.local": {
			Store: "Ha Home",
			Products: []seedProduct{
				{Title: "Binh gom", Price: "220000.00"},
				{Title: "Den ngu", Price: "180000.00", Discount: sql.NullString{String: "20", Valid: true}},
			},
		},
	}

	fmt.Println("Seeding Stores and Products...")
	for email, entry := range catalog {
		ownerID, ok := users[email]
		if !ok {
			log.Printf("Skipping store %s: owner %s missing", entry.Store, email)
			continue
		}
		var storeID int64
		err := db.QueryRow(`SELECT id FROM stores WHERE owner_id = $1 AND name = $2`, ownerID, entry.Store).Scan(&storeID)
		if err == sql.ErrNoRows {
			err = db.QueryRow(`INSERT INTO stores (owner_id, name) VALUES ($1, $2) RETURNING id`, ownerID, entry.Store).Scan(&storeID)
		}
		if err != nil {
			log.Printf("Failed to seed store %s: %v", entry.Store, err)
			continue
		}
		for _, p := range entry.Products {
			_, err := db.Exec(`
				INSERT INTO products (store_id, title, price, discount_percentage)
				SELECT $1, $2, $3, $4
				WHERE NOT EXISTS (SELECT 1 FROM products WHERE store_id = $1 AND title = $2);
			`, storeID, p.Title, p.Price, p.Discount)
			if err != nil {
				log.Printf("Failed to seed product %s: %v", p.Title, err)
			}
		}
	}
}

// printTokens issues access tokens for local testing when JWT_SECRET is set.
func printTokens(users map[string]int64) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return
	}
	svc, err := auth.NewService(auth.Config{
		Secret:   secret,
		Issuer:   os.Getenv("JWT_ISSUER"),
		Audience: os.Getenv("JWT_AUDIENCE"),
	})
	if err != nil {
		log.Printf("Skipping dev tokens: %v", err)
		return
	}
	roles := map[string]string{
		"admin@ecom.local":      "ADMIN",
		"seller.ban@ecom.local": "SELLER",
		"khoa@example.com":      "USER",
	}
	fmt.Println("Dev access tokens:")
	for email, role := range roles {
		id, ok := users[email]
		if !ok {
			continue
		}
		token, expires, err := svc.IssueAccessToken(id, role)
		if err != nil {
			log.Printf("Failed to issue token for %s: %v", email, err)
			continue
		}
		fmt.Printf("  %-24s %-6s exp=%s\n  %s\n", email, role, expires.Format("15:04:05"), token)
	}
}
