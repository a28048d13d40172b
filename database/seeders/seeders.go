package seeders

import (
	"fmt"
	"log"
	"time"

	"shulebook_go/database"
	"shulebook_go/models"
	"shulebook_go/utils"

	"github.com/shopspring/decimal"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedAcademicYears()
	SeedClasses()
	SeedUsers()
	SeedStudents()
	SeedFeeStructures()

	log.Println("Database seeding completed successfully!")
}

// SeedAcademicYears seeds the academic years and their terms
func SeedAcademicYears() {
	var count int64
	database.DB.Model(&models.AcademicYear{}).Count(&count)
	if count > 0 {
		log.Println("Academic years already seeded, skipping...")
		return
	}

	year := models.AcademicYear{Name: "2026", IsActive: true}
	if err := database.DB.Create(&year).Error; err != nil {
		log.Printf("Error seeding academic year: %v", err)
		return
	}

	terms := []models.Term{
		{AcademicYearID: year.ID, Name: "Term 1", Number: 1, IsActive: true,
			StartDate: datePtr(2026, 1, 5), EndDate: datePtr(2026, 4, 3)},
		{AcademicYearID: year.ID, Name: "Term 2", Number: 2,
			StartDate: datePtr(2026, 5, 4), EndDate: datePtr(2026, 8, 7)},
		{AcademicYearID: year.ID, Name: "Term 3", Number: 3,
			StartDate: datePtr(2026, 8, 31), EndDate: datePtr(2026, 11, 20)},
	}
	for _, term := range terms {
		if err := database.DB.Create(&term).Error; err != nil {
			log.Printf("Error seeding term %s: %v", term.Name, err)
		}
	}

	log.Println("Academic years seeded successfully")
}

// SeedClasses seeds the school classes
func SeedClasses() {
	var count int64
	database.DB.Model(&models.SchoolClass{}).Count(&count)
	if count > 0 {
		log.Println("Classes already seeded, skipping...")
		return
	}

	levels := []string{"Grade 1", "Grade 2", "Grade 3", "Grade 4"}
	streams := []string{"East", "West"}

	for _, level := range levels {
		for _, stream := range streams {
			class := models.SchoolClass{Name: level, Stream: stream, Capacity: 40}
			if err := database.DB.Create(&class).Error; err != nil {
				log.Printf("Error seeding class %s %s: %v", level, stream, err)
			}
		}
	}

	log.Println("Classes seeded successfully")
}

// SeedUsers seeds the staff accounts
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	users := []struct {
		Username string
		FullName string
		Role     string
	}{
		{"director", "School Director", "owner"},
		{"admin", "System Administrator", "admin"},
		{"bursar", "Head Bursar", "bursar"},
		{"clerk1", "Accounts Clerk", "clerk"},
	}

	for _, u := range users {
		hashed, err := utils.HashPassword("ChangeMe123!")
		if err != nil {
			log.Printf("Error hashing password for %s: %v", u.Username, err)
			continue
		}
		user := models.User{
			Username: u.Username,
			Password: hashed,
			Email:    u.Username + "@shulebook.example",
			FullName: u.FullName,
			Role:     u.Role,
			Status:   "active",
		}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", u.Username, err)
		}
	}

	log.Println("Users seeded successfully")
}

// SeedStudents seeds a small student register
func SeedStudents() {
	var count int64
	database.DB.Model(&models.Student{}).Count(&count)
	if count > 0 {
		log.Println("Students already seeded, skipping...")
		return
	}

	var classes []models.SchoolClass
	if err := database.DB.Order("id").Find(&classes).Error; err != nil || len(classes) == 0 {
		log.Println("No classes available; skipping student seeding")
		return
	}

	names := []string{
		"Wanjiku Kamau", "Brian Otieno", "Amina Hassan", "Kevin Mwangi",
		"Faith Chebet", "Daniel Njoroge", "Mercy Akinyi", "Samuel Kiprop",
	}

	for i, name := range names {
		class := classes[i%len(classes)]
		category := "DAY"
		if i%4 == 3 {
			category = "BOARDING"
		}
		classID := class.ID
		student := models.Student{
			AdmissionNumber: fmt.Sprintf("ADM%03d", i+1),
			FullName:        name,
			Category:        category,
			CurrentClassID:  &classID,
			GuardianName:    "Guardian of " + name,
			GuardianPhone:   fmt.Sprintf("+2547%08d", 10000000+i),
			GuardianEmail:   fmt.Sprintf("guardian%d@example.com", i+1),
			IsActive:        true,
		}
		if err := database.DB.Create(&student).Error; err != nil {
			log.Printf("Error seeding student %s: %v", student.AdmissionNumber, err)
		}
	}

	log.Println("Students seeded successfully")
}

// SeedFeeStructures seeds the fee catalog for the active year
func SeedFeeStructures() {
	var count int64
	database.DB.Model(&models.FeeStructure{}).Count(&count)
	if count > 0 {
		log.Println("Fee structures already seeded, skipping...")
		return
	}

	var year models.AcademicYear
	if err := database.DB.Where("is_active = ?", true).First(&year).Error; err != nil {
		log.Println("No active academic year; skipping fee structure seeding")
		return
	}

	for term := 1; term <= 3; term++ {
		fees := []models.FeeStructure{
			{Name: "Tuition Fee", Amount: decimal.NewFromInt(15000), AcademicYearID: year.ID, Term: term, IsActive: true},
			{Name: "Activity Fee", Amount: decimal.NewFromInt(1500), AcademicYearID: year.ID, Term: term, IsActive: true},
			{Name: "Boarding Fee", Amount: decimal.NewFromInt(12000), AcademicYearID: year.ID, Term: term, IsActive: true,
				Description: "Charged to boarders only"},
		}
		for _, fee := range fees {
			if err := database.DB.Create(&fee).Error; err != nil {
				log.Printf("Error seeding fee %s term %d: %v", fee.Name, term, err)
			}
		}
	}

	log.Println("Fee structures seeded successfully")
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
