// Command cleanup prunes rows the API never reads again: expired or
// revoked refresh tokens and schedule runs older than the retention
// window. Meant to run from cron.
package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const runRetention = 180 * 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db, err := connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	result := db.Exec("DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked = ?", time.Now(), true)
	if result.Error != nil {
		log.Printf("Error pruning refresh tokens: %v", result.Error)
	} else {
		log.Printf("Pruned %d refresh tokens", result.RowsAffected)
	}

	cutoff := time.Now().Add(-runRetention)
	result = db.Exec("DELETE FROM schedule_runs WHERE created_at < ?", cutoff)
	if result.Error != nil {
		log.Printf("Error pruning schedule runs: %v", result.Error)
	} else {
		log.Printf("Pruned %d schedule runs older than %s", result.RowsAffected, cutoff.Format("2006-01-02"))
	}

	log.Println("Database cleanup completed")
}

func connect() (*gorm.DB, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	// Some deployments still run MySQL; honor the driver switch.
	if os.Getenv("DB_DRIVER") == "mysql" {
		dsn := user + ":" + password + "@tcp(" + host + ":" + port + ")/" + dbname + "?charset=utf8mb4&parseTime=True&loc=Local"
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}

	dsn := "host=" + host + " port=" + port + " user=" + user + " password=" + password + " dbname=" + dbname + " sslmode=disable TimeZone=Asia/Jakarta"
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}
