package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediashare/pkg/config"
	"mediashare/pkg/database"
	"mediashare/pkg/logger"
	"mediashare/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	username string
	fullName string
	password string
	tweets   []string
}

var testUsers = []seedUser{
	{"alice@test.com", "alice", "Alice Liddell", "password123", []string{
		"Just uploaded my first ocean clip",
		"Editing thumbnails at 2am again",
	}},
	{"bob@test.com", "bob", "Bob Builder", "password123", []string{
		"Can we fix it? Yes we can",
	}},
	{"charlie@test.com", "charlie", "Charlie Day", "password123", []string{
		"Cats are the best subject matter",
		"New video on the way",
		"Thanks for 100 views!",
	}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	users, err := seedDatabase(db, log)
	if err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	if cfg.VideoStore == config.StoreMongo {
		mongoDB, err := database.NewMongoDatabase(cfg)
		if err != nil {
			log.Error("Failed to connect to MongoDB: %v", err)
			panic(err)
		}
		defer mongoDB.Client().Disconnect(context.Background())

		if err := seedMongoUsers(mongoDB, users); err != nil {
			log.Error("Failed to seed MongoDB users: %v", err)
			panic(err)
		}
		log.Info("Mirrored %d users into MongoDB", len(users))
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, log *logger.Logger) ([]models.User, error) {
	users := make([]models.User, 0, len(testUsers))

	for _, userData := range testUsers {
		var existing models.User
		err := db.Where("email = ? OR username = ?", userData.email, userData.username).First(&existing).Error
		if err == nil {
			log.Info("User %s already exists, skipping", existing.Username)
			users = append(users, existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up user %s: %w", userData.username, err)
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		user := models.User{
			Email:    userData.email,
			Username: userData.username,
			FullName: userData.fullName,
			Avatar:   fmt.Sprintf("https://api.dicebear.com/7.x/identicon/svg?seed=%s", userData.username),
			Password: string(hashedPassword),
			Role:     models.RoleCreator,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Error("Failed to create user %s: %v", userData.username, err)
			continue
		}
		log.Info("Created user: %s (%s)", user.Username, user.Email)
		users = append(users, user)

		for i, content := range userData.tweets {
			if err := db.Exec(
				"INSERT INTO tweets (owner_id, content, created_at, updated_at) VALUES (?, ?, ?, ?)",
				user.ID, content, time.Now().Add(time.Duration(i)*time.Second), time.Now(),
			).Error; err != nil {
				log.Error("Failed to create tweet for %s: %v", user.Username, err)
			}
		}
		log.Info("Created %d tweets for %s", len(userData.tweets), user.Username)
	}

	return users, nil
}

// seedMongoUsers mirrors the public profile of users into the collection the
// Mongo video store joins against.
func seedMongoUsers(db *mongo.Database, users []models.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coll := db.Collection("users")
	for _, u := range users {
		_, err := coll.UpdateOne(ctx,
			bson.M{"_id": u.ID},
			bson.M{"$set": bson.M{
				"username": u.Username,
				"fullName": u.FullName,
				"avatar":   u.Avatar,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", u.Username, err)
		}
	}
	return nil
}
