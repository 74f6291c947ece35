package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/eco-monitor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// LocationCollection defines the interface for location database operations.
// Containers are embedded in the location document, so container mutations
// go through ReplaceLocation.
type LocationCollection interface {
	InsertLocation(ctx context.Context, location models.Location) error
	FindLocations(ctx context.Context, companyID string) ([]models.Location, error)
	FindLocationByID(ctx context.Context, id string) (*models.Location, error)
	FindLocationByContainerID(ctx context.Context, containerID string) (*models.Location, error)
	ReplaceLocation(ctx context.Context, id string, location models.Location) error
	DeleteLocation(ctx context.Context, id string) error
}

// MongoLocationCollection implements LocationCollection for MongoDB
type MongoLocationCollection struct {
	Collection *mongo.Collection
}

// InsertLocation inserts a location with its containers.
func (c *MongoLocationCollection) InsertLocation(ctx context.Context, location models.Location) error {
	location.CreatedAt = time.Now()
	location.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, location)
	return err
}

// FindLocations queries locations, optionally filtered by company.
func (c *MongoLocationCollection) FindLocations(ctx context.Context, companyID string) ([]models.Location, error) {
	filter := bson.M{}
	if companyID != "" {
		filter["company_id"] = companyID
	}

	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []models.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// FindLocationByID finds a location by its ID.
func (c *MongoLocationCollection) FindLocationByID(ctx context.Context, id string) (*models.Location, error) {
	var location models.Location
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("location not found")
		}
		return nil, err
	}
	return &location, nil
}

// FindLocationByContainerID finds the location owning the given container.
func (c *MongoLocationCollection) FindLocationByContainerID(ctx context.Context, containerID string) (*models.Location, error) {
	var location models.Location
	err := c.Collection.FindOne(ctx, bson.M{"containers._id": containerID}).Decode(&location)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("container not found")
		}
		return nil, err
	}
	return &location, nil
}

// ReplaceLocation replaces a location document by its ID.
func (c *MongoLocationCollection) ReplaceLocation(ctx context.Context, id string, location models.Location) error {
	location.ID = id
	location.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": id}, location)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("location not found")
	}
	return nil
}

// DeleteLocation deletes a location and its embedded containers.
func (c *MongoLocationCollection) DeleteLocation(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("location not found")
	}
	return nil
}
