package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gazette/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores a plaintext password instead of a hash. Dev only.
	SkipBcrypt bool
	// MaxDays bounds how far into the past post timestamps are spread.
	MaxDays int
}

// Seeder populates the database with demo users, authors, categories,
// posts, comments, and subscriptions.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll wipes all seeded content. Order matters under foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, table := range []string{
		"comments", "post_categories", "category_subscribers",
		"posts", "categories", "authors", "users",
	} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds the database per opts. Roughly half the users become authors;
// every author publishes, and the rest subscribe and comment.
func (s *Seeder) Run(opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	if err := Categories(s.db); err != nil {
		return err
	}
	var categories []models.Category
	if err := s.db.Order("id ASC").Find(&categories).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	factory := NewFactory(s.db, opts)
	// #nosec G404: acceptable for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := make([]*models.User, 0, opts.NumUsers)
	authors := make([]*models.Author, 0, opts.NumUsers/2+1)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)

		if i%2 == 0 {
			author, err := factory.CreateAuthor(user)
			if err != nil {
				return fmt.Errorf("create author: %w", err)
			}
			authors = append(authors, author)
		}
	}
	log.Printf("created %d users, %d authors", len(users), len(authors))

	if len(authors) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := authors[rng.Intn(len(authors))]
		tagged := pickCategories(rng, categories)

		post, err := factory.CreatePost(author, tagged)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)

		for c := rng.Intn(4); c > 0; c-- {
			commenter := authors[rng.Intn(len(authors))]
			if _, err := factory.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}
	}
	log.Printf("created %d posts", len(posts))

	subscribed := 0
	for _, user := range users {
		for i := range categories {
			if rng.Intn(4) == 0 {
				if err := factory.Subscribe(user, &categories[i]); err != nil {
					return fmt.Errorf("subscribe: %w", err)
				}
				subscribed++
			}
		}
	}
	log.Printf("created %d subscriptions", subscribed)

	log.Println("Seeding complete. All demo users share the password: Password123!demo")
	return nil
}

// pickCategories chooses one to three distinct categories for a post.
func pickCategories(rng *rand.Rand, categories []models.Category) []models.Category {
	if len(categories) == 0 {
		return nil
	}
	n := 1 + rng.Intn(3)
	if n > len(categories) {
		n = len(categories)
	}
	perm := rng.Perm(len(categories))
	picked := make([]models.Category, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, categories[idx])
	}
	return picked
}
