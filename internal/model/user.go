package model

type User struct {
	Base
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password_hash" json:"-"`
	Image        string  `db:"image" json:"image"`
	Phone        string  `db:"phone" json:"phone"`
	Address      JSONMap `db:"address" json:"address"`
	Gender       string  `db:"gender" json:"gender"`
	DOB          string  `db:"dob" json:"dob"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name    string  `json:"name" binding:"required"`
	Phone   string  `json:"phone" binding:"required"`
	Address JSONMap `json:"address" binding:"required"`
	DOB     string  `json:"dob" binding:"required"`
	Gender  string  `json:"gender" binding:"required"`
	Image   string  `json:"image"`
}
