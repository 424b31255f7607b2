package domain

import "time"

type User struct {
	ID        int
	Name      string
	Email     string
	CreatedAt time.Time
}

// ServerInfo describes the instance that answered. Location and
// ProcessingTime are only set on list responses.
type ServerInfo struct {
	Timestamp      time.Time
	Environment    string
	ServerLocation string
	ProcessingTime string
}

type ListResult struct {
	Users      []User
	ServerInfo ServerInfo
}

type CreateResult struct {
	User       User
	Message    string
	ServerInfo ServerInfo
}
