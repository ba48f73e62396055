package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/database"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
)

func main() {
	// Parse command line flags
	dbPath := flag.String("db", "foodhub.sqlite", "SQLite database file")
	email := flag.String("email", "admin@foodhub.com", "Admin email")
	password := flag.String("password", "admin123", "Admin password, used only when the admin is created")
	name := flag.String("name", "Development client", "OAuth client name")
	flag.Parse()

	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: *dbPath})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Get or create the admin owning the client
	admin, err := services.NewUserService(db).EnsureAdmin("Admin", *email, *password)
	if err != nil {
		log.Fatal("Failed to ensure admin account:", err)
	}

	client, secret, err := services.NewClientService(db).CreateClient(admin.ID, services.ClientInput{
		Name:   *name,
		Domain: "http://localhost",
	})
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}

	fmt.Printf("✓ Development OAuth client created for %s!\n", admin.Email)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", secret)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:8080/api/auth/token \\\n")
	fmt.Printf("  -d 'grant_type=password' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s' \\\n", secret)
	fmt.Printf("  -d 'username=%s' \\\n", admin.Email)
	fmt.Printf("  -d 'password=<admin password>'\n")
}
