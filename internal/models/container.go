package models

// Container represents an individual waste bin tracked within a location.
// A container never exists outside its parent location; the container list
// is embedded in the location document.
type Container struct {
	ID        string  `bson:"_id,omitempty" json:"id"`
	Number    int     `bson:"number" json:"number"`
	Status    Status  `bson:"status" json:"status"`
	FillLevel float64 `bson:"fill_level" json:"fill_level"`
}
