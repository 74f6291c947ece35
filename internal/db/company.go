package db

import (
	"context"
	"time"

	"github.com/ukydev/eco-monitor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CompanyCollection defines the interface for company database operations
type CompanyCollection interface {
	InsertCompany(ctx context.Context, company models.Company) error
	FindCompanies(ctx context.Context) ([]models.Company, error)
	FindCompanyByID(ctx context.Context, id string) (*models.Company, error)
}

// MongoCompanyCollection implements CompanyCollection for MongoDB
type MongoCompanyCollection struct {
	Collection *mongo.Collection
}

// InsertCompany inserts a new company into the database
func (c *MongoCompanyCollection) InsertCompany(ctx context.Context, company models.Company) error {
	company.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, company)
	return err
}

// FindCompanies lists all companies
func (c *MongoCompanyCollection) FindCompanies(ctx context.Context) ([]models.Company, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var companies []models.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// FindCompanyByID finds a company by its ID
func (c *MongoCompanyCollection) FindCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&company)
	if err != nil {
		return nil, err
	}
	return &company, nil
}
