package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/smarttransit/bus-reservation-backend/internal/utils"
)

func main() {
	adminPassword := flag.String("admin-password", "", "optional admin bootstrap password to hash")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("Secret Generator for SmartTransit Reservations")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateJWTSecret()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)

	if *adminPassword != "" {
		hash, err := utils.HashPassword(*adminPassword)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
	}

	fmt.Println()
	fmt.Println("IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
