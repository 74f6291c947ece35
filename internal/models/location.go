package models

import "time"

// Location represents a physical waste-collection site with its containers.
// The status field is the backend's cached classification of the site; it is
// overwritten wholesale whenever a patch arrives, never recomputed locally.
type Location struct {
	ID             string      `bson:"_id,omitempty" json:"id"`
	Name           string      `bson:"name" json:"name"`
	Address        string      `bson:"address" json:"address"`
	Lat            float64     `bson:"lat" json:"lat"`
	Lng            float64     `bson:"lng" json:"lng"`
	Status         Status      `bson:"status" json:"status"`
	Containers     []Container `bson:"containers" json:"containers"`
	LastCollection *time.Time  `bson:"last_collection,omitempty" json:"last_collection,omitempty"`
	CompanyID      string      `bson:"company_id" json:"company_id,omitempty"`
	Company        *Company    `bson:"-" json:"company,omitempty"`
	CreatedAt      time.Time   `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt      time.Time   `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ContainerByID returns the container with the given id, or nil.
func (l *Location) ContainerByID(id string) *Container {
	for i := range l.Containers {
		if l.Containers[i].ID == id {
			return &l.Containers[i]
		}
	}
	return nil
}
