package controllers

import (
	"strconv"

	"shulebook_go/database"
	"shulebook_go/models"
	"shulebook_go/utils"

	"github.com/gofiber/fiber/v2"
)

// StudentController exposes the student register read-only for billing lookups
type StudentController struct{}

// GetStudents returns students with pagination and filters
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var students []models.Student
	var total int64

	query := database.DB.Model(&models.Student{})

	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("current_class_id = ?", classID)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	} else {
		query = query.Where("is_active = ?", true)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("admission_number LIKE ? OR full_name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)

	if err := query.Preload("CurrentClass").
		Order("admission_number").
		Offset(offset).Limit(limit).Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch students",
		})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStudent returns a student with their invoice history
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var student models.Student
	if err := database.DB.Preload("CurrentClass").First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	var invoices []models.Invoice
	if err := database.DB.Preload("AcademicYear").
		Where("student_id = ?", student.ID).
		Order("academic_year_id DESC, term DESC").
		Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch student invoices",
		})
	}

	return c.JSON(fiber.Map{
		"student":  student,
		"invoices": invoices,
	})
}

// GetStudentStatement returns the student's full fee statement: every invoice
// with its items, adjustments and payments.
func (sc *StudentController) GetStudentStatement(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}

	var student models.Student
	if err := database.DB.Preload("CurrentClass").First(&student, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	var invoices []models.Invoice
	if err := database.DB.
		Preload("AcademicYear").
		Preload("Items").Preload("Adjustments").Preload("Payments").
		Where("student_id = ?", student.ID).
		Order("academic_year_id, term").
		Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch statement",
		})
	}

	dtos := make([]utils.InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		inv.Student = student
		dtos = append(dtos, utils.ToInvoiceDTO(inv))
	}

	return c.JSON(fiber.Map{
		"student":  utils.ToStudentShort(student),
		"invoices": dtos,
	})
}
