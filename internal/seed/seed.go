// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"neighborly/internal/models"
)

var buildings = []string{"Oakwood Tower", "Maple Court", "Cedar Heights"}
var blocks = []string{"A", "B", "C"}

// Seeder populates the database with realistic community data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll wipes every seeded table, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.PollVote{}, &models.PollOption{}, &models.Poll{},
		&models.Comment{}, &models.Report{}, &models.Post{}, &models.User{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear table: %w", err)
		}
	}
	return nil
}

// CreateUser persists a resident with realistic attributes. Overrides may
// adjust the generated user before saving. All seeded users share the
// password "password123".
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Name:      gofakeit.Name(),
		Email:     gofakeit.Email(),
		Password:  string(hashed),
		Building:  buildings[s.rng.Intn(len(buildings))],
		Block:     blocks[s.rng.Intn(len(blocks))],
		Floor:     fmt.Sprintf("%d", s.rng.Intn(20)+1),
		RoomNo:    fmt.Sprintf("%d%02d", s.rng.Intn(20)+1, s.rng.Intn(8)+1),
		PushToken: fmt.Sprintf("ExponentPushToken[%s]", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post authored by the given user.
func (s *Seeder) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:    author.ID,
		Building:  author.Building,
		Block:     author.Block,
		Category:  models.Categories[s.rng.Intn(len(models.Categories))],
		Text:      gofakeit.Paragraph(1, 3, 8, " "),
		CreatedAt: s.pastTime(30),
	}
	for _, override := range overrides {
		override(post)
	}
	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePoll persists a poll with 2 to 4 options authored by the given user.
func (s *Seeder) CreatePoll(author *models.User, overrides ...func(*models.Poll)) (*models.Poll, error) {
	poll := &models.Poll{
		UserID:    author.ID,
		Building:  author.Building,
		Block:     author.Block,
		Category:  models.Categories[s.rng.Intn(len(models.Categories))],
		Question:  gofakeit.Question(),
		CreatedAt: s.pastTime(30),
	}
	for i := 0; i < 2+s.rng.Intn(3); i++ {
		poll.Options = append(poll.Options, models.PollOption{
			Position: i,
			Text:     gofakeit.Word(),
		})
	}
	for _, override := range overrides {
		override(poll)
	}
	if err := s.db.Create(poll).Error; err != nil {
		return nil, err
	}
	return poll, nil
}

// SeedCommunity creates residents across the known buildings plus a mix of
// posts, polls, votes, and comments. Returns the created users.
func (s *Seeder) SeedCommunity(numUsers, numPosts, numPolls int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return users, nil
	}

	// One admin per building keeps pinning exercisable.
	seenBuildings := map[string]bool{}
	for _, u := range users {
		if !seenBuildings[u.Building] {
			seenBuildings[u.Building] = true
			if err := s.db.Model(u).Update("is_admin", true).Error; err != nil {
				return nil, fmt.Errorf("promote admin: %w", err)
			}
		}
	}

	for i := 0; i < numPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		post, err := s.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("seed post: %w", err)
		}
		for _, u := range s.sample(users, s.rng.Intn(4)) {
			if u.Building != post.Building || u.ID == post.UserID {
				continue
			}
			comment := &models.Comment{
				PostID:    post.ID,
				UserID:    u.ID,
				Text:      gofakeit.Sentence(8),
				CreatedAt: post.CreatedAt.Add(time.Duration(s.rng.Intn(48)) * time.Hour),
			}
			if err := s.db.Create(comment).Error; err != nil {
				return nil, fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	for i := 0; i < numPolls; i++ {
		author := users[s.rng.Intn(len(users))]
		poll, err := s.CreatePoll(author)
		if err != nil {
			return nil, fmt.Errorf("seed poll: %w", err)
		}
		for _, u := range s.sample(users, s.rng.Intn(6)) {
			if u.Building != poll.Building {
				continue
			}
			vote := &models.PollVote{
				PollID:      poll.ID,
				UserID:      u.ID,
				OptionIndex: s.rng.Intn(len(poll.Options)),
			}
			if err := s.db.Create(vote).Error; err != nil {
				return nil, fmt.Errorf("seed vote: %w", err)
			}
		}
	}

	return users, nil
}

func (s *Seeder) sample(users []*models.User, n int) []*models.User {
	if n >= len(users) {
		return users
	}
	picked := make([]*models.User, 0, n)
	for _, i := range s.rng.Perm(len(users))[:n] {
		picked = append(picked, users[i])
	}
	return picked
}

func (s *Seeder) pastTime(maxDays int) time.Time {
	back := time.Duration(s.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}
