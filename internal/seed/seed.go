package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studyhub/internal/database"
	"studyhub/internal/middleware"
	"studyhub/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Summary counts what a run inserted.
type Summary struct {
	Users         int `json:"users"`
	Posts         int `json:"posts"`
	Comments      int `json:"comments"`
	Likes         int `json:"likes"`
	Courses       int `json:"courses"`
	Enrollments   int `json:"enrollments"`
	Events        int `json:"events"`
	Attendees     int `json:"attendees"`
	Groups        int `json:"groups"`
	Members       int `json:"members"`
	Forums        int `json:"forums"`
	Topics        int `json:"topics"`
	Replies       int `json:"replies"`
	Resources     int `json:"resources"`
	Notifications int `json:"notifications"`
}

// Seeder applies presets to a database.
type Seeder struct {
	db *gorm.DB
	// BcryptCost is used to hash the preset password once per run.
	BcryptCost int
}

// NewSeeder creates a Seeder.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, BcryptCost: bcrypt.DefaultCost}
}

// ClearAll deletes every row of every application table, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	all := database.PersistentModels()
	db := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Unscoped().Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	middleware.Logger.InfoContext(ctx, "Cleared seeded tables", slog.Int("tables", len(all)))
	return nil
}

// Run inserts the content described by p inside one transaction.
func (s *Seeder) Run(ctx context.Context, p Preset) (*Summary, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	sum := &Summary{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := &run{f: NewFactory(tx, seed, string(hash), p.Subjects), p: p, sum: sum}
		return r.all()
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "Seeding complete",
		slog.String("preset", p.Name),
		slog.Int64("seed", seed),
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Duration("took", time.Since(start)),
	)
	return sum, nil
}

type run struct {
	f   *Factory
	p   Preset
	sum *Summary

	users []uint
}

func (r *run) all() error {
	steps := []func() error{r.people, r.posts, r.courses, r.events, r.groups, r.discussions, r.resources, r.notifications}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) people() error {
	for i := 0; i < r.p.Users; i++ {
		profile, err := r.f.CreateUser()
		if err != nil {
			return err
		}
		r.users = append(r.users, profile.ID)
		r.sum.Users++
	}
	return nil
}

func (r *run) posts() error {
	for _, author := range r.users {
		for i := 0; i < r.p.PostsPerUser; i++ {
			post, err := r.f.CreatePost(author, r.p.MaxPostAgeDays)
			if err != nil {
				return err
			}
			r.sum.Posts++

			for _, liker := range r.f.Pick(r.users, r.f.Intn(0, r.p.LikesPerPost), author) {
				if err := r.f.Like(post.ID, liker); err != nil {
					return err
				}
				r.sum.Likes++
			}
			for j := r.f.Intn(0, r.p.CommentsPerPost); j > 0; j-- {
				commenter := r.f.Pick(r.users, 1, 0)[0]
				if _, err := r.f.CreateComment(post, commenter); err != nil {
					return err
				}
				r.sum.Comments++
			}
		}
	}
	return nil
}

func (r *run) courses() error {
	for i := 0; i < r.p.Courses; i++ {
		instructor := r.f.Pick(r.users, 1, 0)[0]
		course, err := r.f.CreateCourse(instructor)
		if err != nil {
			return err
		}
		r.sum.Courses++
		for _, student := range r.f.Pick(r.users, r.p.EnrollmentsEach, instructor) {
			if err := r.f.Enroll(course.ID, student); err != nil {
				return err
			}
			r.sum.Enrollments++
		}
	}
	return nil
}

func (r *run) events() error {
	for i := 0; i < r.p.Events; i++ {
		organizer := r.f.Pick(r.users, 1, 0)[0]
		event, err := r.f.CreateEvent(organizer)
		if err != nil {
			return err
		}
		r.sum.Events++
		for _, guest := range r.f.Pick(r.users, r.p.AttendeesEach, organizer) {
			if err := r.f.Attend(event.ID, guest); err != nil {
				return err
			}
			r.sum.Attendees++
		}
	}
	return nil
}

func (r *run) groups() error {
	for i := 0; i < r.p.Groups; i++ {
		creator := r.f.Pick(r.users, 1, 0)[0]
		group, err := r.f.CreateGroup(creator)
		if err != nil {
			return err
		}
		r.sum.Groups++
		r.sum.Members++
		for _, member := range r.f.Pick(r.users, r.p.MembersEach, creator) {
			if err := r.f.JoinGroup(group.ID, member); err != nil {
				return err
			}
			r.sum.Members++
		}
	}
	return nil
}

func (r *run) discussions() error {
	for i := 0; i < r.p.Forums; i++ {
		forum, err := r.f.CreateForum(r.f.Pick(r.users, 1, 0)[0])
		if err != nil {
			return err
		}
		r.sum.Forums++
		for j := 0; j < r.p.TopicsPerForum; j++ {
			topic, err := r.f.CreateTopic(forum.ID, r.f.Pick(r.users, 1, 0)[0])
			if err != nil {
				return err
			}
			r.sum.Topics++
			for k := 0; k < r.p.RepliesPerTopic; k++ {
				if _, err := r.f.CreateReply(topic, r.f.Pick(r.users, 1, 0)[0]); err != nil {
					return err
				}
				r.sum.Replies++
			}
		}
	}
	return nil
}

func (r *run) resources() error {
	for i := 0; i < r.p.Resources; i++ {
		if _, err := r.f.CreateResource(r.f.Pick(r.users, 1, 0)[0]); err != nil {
			return err
		}
		r.sum.Resources++
	}
	return nil
}

func (r *run) notifications() error {
	for _, user := range r.users {
		for i := 0; i < r.p.NotificationsFor; i++ {
			kind, content := models.NotificationGroup, "New activity in your study groups"
			if i%2 == 1 {
				kind, content = models.NotificationEvent, "An event you follow starts soon"
			}
			if err := r.f.CreateNotification(user, kind, content, nil); err != nil {
				return err
			}
			r.sum.Notifications++
		}
	}
	return nil
}
