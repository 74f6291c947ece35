package models

import "time"

// Company represents a tenant company owning locations and users.
type Company struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt   time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
}
