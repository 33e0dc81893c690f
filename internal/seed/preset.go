package seed

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSubjects are used when a preset names none.
var DefaultSubjects = []string{
	"Computer Science", "Mathematics", "Physics", "Chemistry", "Biology",
	"History", "Economics", "Psychology", "Literature", "Philosophy",
}

// Preset sizes a seeding run. Presets are loaded from YAML files or picked by name.
type Preset struct {
	Name string `yaml:"name"`
	// Seed makes runs reproducible; 0 picks a random seed.
	Seed     int64    `yaml:"seed"`
	Password string   `yaml:"password"`
	Subjects []string `yaml:"subjects"`
	Clean    bool     `yaml:"clean"`

	Users            int `yaml:"users"`
	PostsPerUser     int `yaml:"posts_per_user"`
	MaxPostAgeDays   int `yaml:"max_post_age_days"`
	CommentsPerPost  int `yaml:"comments_per_post"`
	LikesPerPost     int `yaml:"likes_per_post"`
	Courses          int `yaml:"courses"`
	EnrollmentsEach  int `yaml:"enrollments_per_course"`
	Events           int `yaml:"events"`
	AttendeesEach    int `yaml:"attendees_per_event"`
	Groups           int `yaml:"groups"`
	MembersEach      int `yaml:"members_per_group"`
	Forums           int `yaml:"forums"`
	TopicsPerForum   int `yaml:"topics_per_forum"`
	RepliesPerTopic  int `yaml:"replies_per_topic"`
	Resources        int `yaml:"resources"`
	NotificationsFor int `yaml:"notifications_per_user"`
}

var presets = map[string]Preset{
	"minimal": {
		Name: "minimal", Seed: 1, Users: 4, PostsPerUser: 2, MaxPostAgeDays: 14,
		CommentsPerPost: 1, LikesPerPost: 2, Courses: 2, EnrollmentsEach: 2,
		Events: 2, AttendeesEach: 2, Groups: 1, MembersEach: 2,
		Forums: 1, TopicsPerForum: 2, RepliesPerTopic: 2, Resources: 3, NotificationsFor: 1,
	},
	"campus": {
		Name: "campus", Users: 40, PostsPerUser: 4, MaxPostAgeDays: 60,
		CommentsPerPost: 3, LikesPerPost: 8, Courses: 12, EnrollmentsEach: 15,
		Events: 10, AttendeesEach: 12, Groups: 8, MembersEach: 10,
		Forums: 6, TopicsPerForum: 5, RepliesPerTopic: 4, Resources: 25, NotificationsFor: 3,
	},
	"crowded": {
		Name: "crowded", Users: 200, PostsPerUser: 6, MaxPostAgeDays: 120,
		CommentsPerPost: 6, LikesPerPost: 30, Courses: 40, EnrollmentsEach: 60,
		Events: 30, AttendeesEach: 40, Groups: 25, MembersEach: 30,
		Forums: 12, TopicsPerForum: 12, RepliesPerTopic: 8, Resources: 80, NotificationsFor: 5,
	},
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePreset returns the built-in preset called nameOrPath, or loads it as a YAML file.
func ResolvePreset(nameOrPath string) (Preset, error) {
	if p, ok := presets[strings.ToLower(nameOrPath)]; ok {
		return p.withDefaults(), nil
	}
	if strings.HasSuffix(nameOrPath, ".yml") || strings.HasSuffix(nameOrPath, ".yaml") {
		return LoadPreset(nameOrPath)
	}
	return Preset{}, fmt.Errorf("unknown preset %q (built-in: %s)", nameOrPath, strings.Join(PresetNames(), ", "))
}

// LoadPreset reads a YAML preset file.
func LoadPreset(path string) (Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(raw)
}

// ParsePreset decodes a YAML preset. Unknown keys are rejected.
func ParsePreset(raw []byte) (Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.validate(); err != nil {
		return Preset{}, err
	}
	return p.withDefaults(), nil
}

func (p Preset) validate() error {
	counts := map[string]int{
		"users": p.Users, "posts_per_user": p.PostsPerUser, "comments_per_post": p.CommentsPerPost,
		"likes_per_post": p.LikesPerPost, "courses": p.Courses, "enrollments_per_course": p.EnrollmentsEach,
		"events": p.Events, "attendees_per_event": p.AttendeesEach, "groups": p.Groups,
		"members_per_group": p.MembersEach, "forums": p.Forums, "topics_per_forum": p.TopicsPerForum,
		"replies_per_topic": p.RepliesPerTopic, "resources": p.Resources,
		"notifications_per_user": p.NotificationsFor, "max_post_age_days": p.MaxPostAgeDays,
	}
	for key, n := range counts {
		if n < 0 {
			return fmt.Errorf("preset %s must not be negative", key)
		}
	}
	if p.Users == 0 && (p.PostsPerUser > 0 || p.Courses > 0 || p.Events > 0 || p.Groups > 0 || p.Forums > 0 || p.Resources > 0) {
		return fmt.Errorf("preset needs at least one user to own content")
	}
	return nil
}

func (p Preset) withDefaults() Preset {
	if p.Password == "" {
		p.Password = "password123"
	}
	if len(p.Subjects) == 0 {
		p.Subjects = DefaultSubjects
	}
	if p.MaxPostAgeDays == 0 {
		p.MaxPostAgeDays = 30
	}
	return p
}
