package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmployeeRole string

const (
	RoleDoctor       EmployeeRole = "Doctor"
	RoleReceptionist EmployeeRole = "Receptionist"
	RoleManager      EmployeeRole = "Manager"
	RoleCustomer     EmployeeRole = "Customer"
)

type Branch struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:150;not null"`
	Address   string    `json:"address,omitempty" gorm:"size:255"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Branch) TableName() string { return "branches" }

type Employee struct {
	ID        int64        `json:"id" gorm:"primaryKey"`
	BranchID  int64        `json:"branchId" gorm:"not null;index"`
	FullName  string       `json:"fullName" gorm:"size:150;not null"`
	Role      EmployeeRole `json:"role" gorm:"size:30;not null;index"`
	Active    bool         `json:"active" gorm:"not null"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (Employee) TableName() string { return "employees" }

type Customer struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	FullName  string    `json:"fullName" gorm:"size:150;not null"`
	Phone     string    `json:"phone,omitempty" gorm:"size:30"`
	Email     string    `json:"email,omitempty" gorm:"size:150"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Customer) TableName() string { return "customers" }

type Pet struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	CustomerID int64     `json:"customerId" gorm:"not null;index"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	Species    string    `json:"species,omitempty" gorm:"size:50"`
	Breed      string    `json:"breed,omitempty" gorm:"size:100"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Pet) TableName() string { return "pets" }

type Product struct {
	ID    int64           `json:"id" gorm:"primaryKey"`
	Name  string          `json:"name" gorm:"size:150;not null"`
	Price decimal.Decimal `json:"price" gorm:"type:decimal(18,2);not null"`
}

func (Product) TableName() string { return "products" }

type Service struct {
	ID    int64           `json:"id" gorm:"primaryKey"`
	Name  string          `json:"name" gorm:"size:150;not null"`
	Price decimal.Decimal `json:"price" gorm:"type:decimal(18,2);not null"`
}

func (Service) TableName() string { return "services" }
