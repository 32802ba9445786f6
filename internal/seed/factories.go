package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"forum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "Forum-Password-1"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID   uint
	password string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:     db,
		opts:   opts,
		rand:   rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
}

func (f *Factory) hashedPassword() string {
	if f.password != "" {
		return f.password
	}
	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		f.password = DefaultPassword
		return f.password
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		f.password = DefaultPassword
		return f.password
	}
	f.password = string(hashed)
	return f.password
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rand.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rand.Intn(24))*time.Hour +
		time.Duration(f.rand.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateUser constructs and persists a sample user together with its profile.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: f.hashedPassword(),
		Profile: &models.Profile{
			Points:       gofakeit.Number(0, 500),
			LegionMember: f.rand.Float32() < 0.2,
			PixelMember:  f.rand.Float32() < 0.2,
		},
	}

	for _, override := range overrides {
		override(user)
	}
	if user.Profile == nil {
		user.Profile = &models.Profile{}
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		user.Profile.UserID = user.ID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	profile := user.Profile
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by user without persisting it.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	title := gofakeit.Sentence(5)
	if len(title) > models.PostTitleMaxLength {
		title = title[:models.PostTitleMaxLength]
	}
	post := &models.Post{
		Title:     title,
		Text:      gofakeit.Paragraph(1, 3, 12, "\n"),
		AuthorID:  user.ID,
		Active:    true,
		CreatedAt: f.createdAt(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.CreatePostsBatch([]*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
// Posts built with Active=false are hidden after insert.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}

	var hidden []*models.Post
	for _, p := range posts {
		if !p.Active {
			p.Active = true
			hidden = append(hidden, p)
		}
	}
	if err := f.db.Omit("Author", "Comments", "Reports").Create(&posts).Error; err != nil {
		return err
	}
	if len(hidden) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(hidden))
	for _, p := range hidden {
		ids = append(ids, p.ID)
		p.Active = false
	}
	return f.db.Model(&models.Post{}).Where("id IN ?", ids).Update("active", false).Error
}

// CreateComment constructs and persists a sample comment on the provided
// post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:      gofakeit.Sentence(8),
		AuthorID:  user.ID,
		PostID:    post.ID,
		Active:    true,
		CreatedAt: post.CreatedAt.Add(time.Duration(f.rand.Intn(72)+1) * time.Hour),
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	active := comment.Active
	comment.Active = true
	if err := f.db.Omit("Author", "Post", "Reports").Create(comment).Error; err != nil {
		return nil, err
	}
	if !active {
		if err := f.db.Model(comment).Update("active", false).Error; err != nil {
			return nil, err
		}
	}
	return comment, nil
}

// CreatePostReport persists a report from user against post.
func (f *Factory) CreatePostReport(user *models.User, post *models.Post) (*models.PostReport, error) {
	report := &models.PostReport{
		PostID:   post.ID,
		AuthorID: user.ID,
		Reason:   gofakeit.Sentence(6),
	}
	if f.opts.DryRun {
		f.nextID++
		report.ID = f.nextID
		return report, nil
	}
	if err := f.db.Omit("Author").Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}
