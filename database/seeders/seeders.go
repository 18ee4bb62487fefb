package seeders

import (
	"log"
	"time"

	"classquest_go/database"
	"classquest_go/models"
	"classquest_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedPointReasons()
	SeedStoreItems()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers seeds an admin, two tutors, and a handful of students
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	hashedPassword, _ := utils.HashPassword("password123")
	seedTime := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	staff := []models.User{
		{
			BaseModel: models.BaseModel{ID: 1, CreatedAt: seedTime},
			Username:  "admin",
			Password:  hashedPassword,
			Email:     "admin@classquest.app",
			Role:      "admin",
			Status:    "active",
			FirstName: "System",
			LastName:  "Admin",
		},
		{
			BaseModel: models.BaseModel{ID: 2, CreatedAt: seedTime},
			Username:  "tutor_nok",
			Password:  hashedPassword,
			Email:     "nok@classquest.app",
			Role:      "tutor",
			Status:    "active",
			FirstName: "Nok",
			LastName:  "Srisuwan",
			Nickname:  "Nok",
		},
		{
			BaseModel: models.BaseModel{ID: 3, CreatedAt: seedTime},
			Username:  "tutor_beam",
			Password:  hashedPassword,
			Email:     "beam@classquest.app",
			Role:      "tutor",
			Status:    "active",
			FirstName: "Beam",
			LastName:  "Chaiyasit",
			Nickname:  "Beam",
		},
	}
	for _, user := range staff {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", user.Username, err)
		}
	}

	nokID := uint(2)
	beamID := uint(3)
	students := []models.User{
		{
			BaseModel: models.BaseModel{ID: 4, CreatedAt: seedTime},
			Username:  "alice_w",
			Password:  hashedPassword,
			Email:     "alice.wilson@gmail.com",
			Role:      "student",
			Status:    "active",
			FirstName: "Alice",
			LastName:  "Wilson",
			TutorID:   &nokID,
		},
		{
			BaseModel: models.BaseModel{ID: 5, CreatedAt: seedTime},
			Username:  "bob_t",
			Password:  hashedPassword,
			Email:     "bob.taylor@gmail.com",
			Role:      "student",
			Status:    "active",
			FirstName: "Bob",
			LastName:  "Taylor",
			TutorID:   &nokID,
		},
		{
			BaseModel: models.BaseModel{ID: 6, CreatedAt: seedTime},
			Username:  "mint_p",
			Password:  hashedPassword,
			Email:     "mint.p@gmail.com",
			Role:      "student",
			Status:    "active",
			FirstName: "Mint",
			LastName:  "Prasert",
			Nickname:  "Mint",
			TutorID:   &beamID,
		},
		{
			BaseModel: models.BaseModel{ID: 7, CreatedAt: seedTime},
			Username:  "first_k",
			Password:  hashedPassword,
			Email:     "first.k@gmail.com",
			Role:      "student",
			Status:    "active",
			FirstName: "First",
			LastName:  "Kittichai",
			Nickname:  "First",
			TutorID:   &beamID,
		},
	}
	for _, user := range students {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", user.Username, err)
		}
	}

	log.Println("Users seeded successfully")
}

// SeedPointReasons seeds the preset award and penalty reasons
func SeedPointReasons() {
	var count int64
	database.DB.Model(&models.PointReason{}).Count(&count)
	if count > 0 {
		log.Println("Point reasons already seeded, skipping...")
		return
	}

	reasons := []models.PointReason{
		{Name: "Homework completed", Amount: 20, Category: "award", Active: true},
		{Name: "Class participation", Amount: 10, Category: "award", Active: true},
		{Name: "Helping a classmate", Amount: 15, Category: "award", Active: true},
		{Name: "Quiz top score", Amount: 25, Category: "award", Active: true},
		{Name: "Late to class", Amount: -10, Category: "penalty", Active: true},
		{Name: "Missing homework", Amount: -15, Category: "penalty", Active: true},
		{Name: "Disruptive behaviour", Amount: -20, Category: "penalty", Active: true},
	}
	for _, reason := range reasons {
		if err := database.DB.Create(&reason).Error; err != nil {
			log.Printf("Error seeding point reason %s: %v", reason.Name, err)
		}
	}

	log.Println("Point reasons seeded successfully")
}

// SeedStoreItems seeds the points store catalogue
func SeedStoreItems() {
	var count int64
	database.DB.Model(&models.StoreItem{}).Count(&count)
	if count > 0 {
		log.Println("Store items already seeded, skipping...")
		return
	}

	items := []models.StoreItem{
		{Name: "Sticker pack", Description: "A sheet of holographic stickers", Price: 50, Stock: 100, Active: true},
		{Name: "Snack voucher", Description: "Redeemable at the front desk", Price: 80, Stock: 50, Active: true},
		{Name: "Homework pass", Description: "Skip one homework assignment", Price: 200, Stock: 20, Active: true},
		{Name: "Front row seat", Description: "Pick your seat for a week", Price: 120, Stock: 10, Active: true},
		{Name: "Plush mascot", Description: "Limited edition classroom mascot", Price: 500, Stock: 5, Active: true},
	}
	for _, item := range items {
		if err := database.DB.Create(&item).Error; err != nil {
			log.Printf("Error seeding store item %s: %v", item.Name, err)
		}
	}

	log.Println("Store items seeded successfully")
}
