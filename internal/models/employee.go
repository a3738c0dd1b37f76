package models

import "time"

// Employee represents an employee document as stored in the employees collection.
type Employee struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IDNumber  string    `json:"idNumber"`
	Email     string    `json:"eMailAddress"`
	Phone     string    `json:"phoneNumber"`
	Position  string    `json:"position"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// EmployeeChanges holds the fields an update may overwrite. IDNumber is not part of it.
// Image is only written when non-empty.
type EmployeeChanges struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"eMailAddress"`
	Phone     string `json:"phoneNumber"`
	Position  string `json:"position"`
	Image     string `json:"image,omitempty"`
}

// Apply returns a copy of e with the changes written over it.
func (c EmployeeChanges) Apply(e Employee) Employee {
	e.FirstName = c.FirstName
	e.LastName = c.LastName
	e.Email = c.Email
	e.Phone = c.Phone
	e.Position = c.Position
	if c.Image != "" {
		e.Image = c.Image
	}

	return e
}

// Upload is a single file buffered in memory from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the number of buffered bytes.
func (u *Upload) Size() int64 {
	return int64(len(u.Data))
}
