package model

type UserRole string

const (
	Student UserRole = "student"
	Staff   UserRole = "staff"
	Admin   UserRole = "admin"
)
