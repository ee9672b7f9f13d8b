package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

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

	seedAdmins(db)
	seedCatalog(db)

	log.Println("Seeding completed successfully!")
}

func seedAdmins(db *sql.DB) {
	admins := []struct {
		Email    string
		FullName string
		Role     string
		Password string
	}{
		{"root@electro.cm", "Compte racine", "root", envOrDefault("SEED_ROOT_PASSWORD", "changeme-now")},
		{"gestion@electro.cm", "Gestionnaire boutique", "admin", envOrDefault("SEED_ADMIN_PASSWORD", "changeme-now")},
	}

	fmt.Println("Seeding admin users...")
	for _, a := range admins {
		hash, err := argon2id.CreateHash(a.Password, argon2id.DefaultParams)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", a.Email, err)
		}
		_, err = db.Exec(`
			INSERT INTO admin_users (email, full_name, password_hash, role)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO NOTHING;
		`, a.Email, a.FullName, hash, a.Role)
		if err != nil {
			log.Printf("Failed to seed admin %s: %v", a.Email, err)
		}
	}
}

func seedCatalog(db *sql.DB) {
	categories := []struct {
		Name       string
		Slug       string
		OrderIndex int
	}{
		{"Câbles et fils", "cables-et-fils", 0},
		{"Disjoncteurs", "disjoncteurs", 1},
		{"Éclairage", "eclairage", 2},
		{"Groupes électrogènes", "groupes-electrogenes", 3},
		{"Énergie solaire", "energie-solaire", 4},
		{"Climatisation", "climatisation", 5},
	}

	fmt.Println("Seeding categories...")
	catIDs := make(map[string]string)
	for _, c := range categories {
		var id string
		err := db.QueryRow(`
			INSERT INTO categories (name, slug, order_index)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, order_index = EXCLUDED.order_index
			RETURNING id;
		`, c.Name, c.Slug, c.OrderIndex).Scan(&id)
		if err != nil {
			log.Printf("Failed to upsert category %s: %v", c.Name, err)
			continue
		}
		catIDs[c.Slug] = id
	}

	brands := []struct {
		Name string
		Slug string
	}{
		{"Schneider Electric", "schneider-electric"},
		{"Legrand", "legrand"},
		{"ABB", "abb"},
		{"Philips", "philips"},
		{"Jinko Solar", "jinko-solar"},
		{"Midea", "midea"},
	}

	fmt.Println("Seeding brands...")
	brandIDs := make(map[string]string)
	for _, b := range brands {
		var id string
		err := db.QueryRow(`
			INSERT INTO brands (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id;
		`, b.Name, b.Slug).Scan(&id)
		if err != nil {
			log.Printf("Failed to upsert brand %s: %v", b.Name, err)
			continue
		}
		brandIDs[b.Slug] = id
	}

	products := []struct {
		Name      string
		Slug      string
		Brand     string
		Category  string
		UnitPrice int64
		BulkPrice int64
		BulkMin   int
		Install   bool
	}{
		{"Câble VGV 2.5mm² (rouleau 100m)", "cable-vgv-2-5mm", "legrand", "cables-et-fils", 45000, 40000, 10, false},
		{"Câble VGV 4mm² (rouleau 100m)", "cable-vgv-4mm", "legrand", "cables-et-fils", 72000, 65000, 10, false},
		{"Disjoncteur divisionnaire 16A", "disjoncteur-16a", "schneider-electric", "disjoncteurs", 6500, 5500, 20, false},
		{"Disjoncteur différentiel 63A 30mA", "disjoncteur-differentiel-63a", "schneider-electric", "disjoncteurs", 38000, 34000, 5, true},
		{"Projecteur LED 50W", "projecteur-led-50w", "philips", "eclairage", 12000, 10000, 10, false},
		{"Panneau solaire 450W", "panneau-solaire-450w", "jinko-solar", "energie-solaire", 95000, 88000, 10, true},
		{"Climatiseur split 1.5CV", "climatiseur-split-1-5cv", "midea", "climatisation", 285000, 0, 0, true},
		{"Groupe électrogène 6.5kVA", "groupe-electrogene-6-5kva", "abb", "groupes-electrogenes", 0, 0, 0, true},
	}

	fmt.Println("Seeding products...")
	for _, p := range products {
		catID, ok1 := catIDs[p.Category]
		brandID, ok2 := brandIDs[p.Brand]
		if !ok1 || !ok2 {
			log.Printf("Missing category or brand for %s", p.Name)
			continue
		}

		sku := strings.ToUpper(strings.ReplaceAll(p.Slug, "-", ""))
		var prodID string
		err := db.QueryRow(`
			INSERT INTO products (name, slug, sku, category_id, brand_id, requires_installation, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, true)
			ON CONFLICT (slug) DO UPDATE SET
				category_id = EXCLUDED.category_id,
				brand_id = EXCLUDED.brand_id,
				requires_installation = EXCLUDED.requires_installation
			RETURNING id;
		`, p.Name, p.Slug, sku, catID, brandID, p.Install).Scan(&prodID)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
			continue
		}

		var variantID string
		err = db.QueryRow(`
			INSERT INTO product_variants (product_id, sku, name, is_active)
			VALUES ($1, $2 || '-STD', 'Standard', true)
			ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name
			RETURNING id;
		`, prodID, sku).Scan(&variantID)
		if err != nil {
			log.Printf("Failed to seed variant for %s: %v", p.Name, err)
			continue
		}

		// A zero unit price deliberately stays unpriced, the storefront
		// shows "devis sur demande" for those.
		if p.UnitPrice > 0 {
			if _, err := db.Exec(`
				INSERT INTO prices (variant_id, price_type, amount, min_quantity, is_active, valid_from)
				SELECT $1, 'UNIT', $2, 1, true, now()
				WHERE NOT EXISTS (
					SELECT 1 FROM prices WHERE variant_id = $1 AND price_type = 'UNIT' AND is_active
				);
			`, variantID, p.UnitPrice); err != nil {
				log.Printf("Failed to seed unit price for %s: %v", p.Name, err)
			}
		}
		if p.BulkPrice > 0 && p.BulkMin > 1 {
			if _, err := db.Exec(`
				INSERT INTO prices (variant_id, price_type, amount, min_quantity, is_active, valid_from)
				SELECT $1, 'BULK', $2, $3, true, now()
				WHERE NOT EXISTS (
					SELECT 1 FROM prices WHERE variant_id = $1 AND price_type = 'BULK' AND is_active
				);
			`, variantID, p.BulkPrice, p.BulkMin); err != nil {
				log.Printf("Failed to seed bulk price for %s: %v", p.Name, err)
			}
		}

		if _, err := db.Exec(`
			INSERT INTO stock_levels (variant_id, quantity, reorder_level)
			VALUES ($1, 50, 5)
			ON CONFLICT (variant_id) DO NOTHING;
		`, variantID); err != nil {
			log.Printf("Failed to seed stock for %s: %v", p.Name, err)
		}
	}
}

func envOrDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
