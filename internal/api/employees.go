package api

import (
	"errors"
	"net/http"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/services/employees"
	"github.com/gin-gonic/gin"
)

type employeeRequest struct {
	FirstName string `form:"firstName"    json:"firstName"    binding:"required"`
	LastName  string `form:"lastName"     json:"lastName"     binding:"required"`
	IDNumber  string `form:"idNumber"     json:"idNumber"     binding:"required"`
	Email     string `form:"eMailAddress" json:"eMailAddress" binding:"required"`
	Phone     string `form:"phoneNumber"  json:"phoneNumber"  binding:"required"`
	Position  string `form:"position"     json:"position"     binding:"required"`
}

type employeeChangesRequest struct {
	FirstName string `form:"firstName"    json:"firstName"    binding:"required"`
	LastName  string `form:"lastName"     json:"lastName"     binding:"required"`
	Email     string `form:"eMailAddress" json:"eMailAddress" binding:"required"`
	Phone     string `form:"phoneNumber"  json:"phoneNumber"  binding:"required"`
	Position  string `form:"position"     json:"position"     binding:"required"`
}

func (a *API) listEmployees(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := a.staff.List(ctx)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to list employees", sl.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error retrieving employees"})
		return
	}
	if list == nil {
		list = []models.Employee{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Employees retrieved successfully",
		"employees": list,
	})
}

func (a *API) addEmployee(c *gin.Context) {
	ctx := c.Request.Context()

	var req employeeRequest
	if err := c.ShouldBind(&req); err != nil {
		a.log.DebugContext(ctx, "Rejected employee", "missing", missingFields(err), sl.Err(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required."})
		return
	}

	photo := uploadFrom(c)
	if photo == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image file is required."})
		return
	}

	identifier, err := a.staff.Create(ctx, models.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IDNumber:  req.IDNumber,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
	}, photo)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to add employee", sl.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error adding employee",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Employee added successfully",
		"employeeId": identifier,
	})
}

func (a *API) getEmployee(c *gin.Context) {
	ctx := c.Request.Context()

	employee, err := a.staff.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, employees.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found"})
			return
		}
		a.log.ErrorContext(ctx, "Failed to get employee", "id", c.Param("id"), sl.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error retrieving employee"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Employee retrieved successfully",
		"employee": employee,
	})
}

func (a *API) updateEmployee(c *gin.Context) {
	ctx := c.Request.Context()
	identifier := c.Param("id")

	var req employeeChangesRequest
	if err := c.ShouldBind(&req); err != nil {
		a.log.DebugContext(ctx, "Rejected employee update", "missing", missingFields(err), sl.Err(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required."})
		return
	}

	employee, err := a.staff.Update(ctx, identifier, models.EmployeeChanges{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
	}, uploadFrom(c))
	if err != nil {
		if errors.Is(err, employees.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found"})
			return
		}
		a.log.ErrorContext(ctx, "Failed to update employee", "id", identifier, sl.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating employee"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Employee updated successfully",
		"employee": employee,
	})
}

func (a *API) deleteEmployee(c *gin.Context) {
	ctx := c.Request.Context()
	identifier := c.Param("id")

	if err := a.staff.Delete(ctx, identifier); err != nil {
		if errors.Is(err, employees.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found"})
			return
		}
		a.log.ErrorContext(ctx, "Failed to delete employee", "id", identifier, sl.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting employee"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
