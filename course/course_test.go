package course_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/vyomadl/vyoma-dl/course"
	"github.com/vyomadl/vyoma-dl/logger"
	"github.com/vyomadl/vyoma-dl/pkg/sitetest"
	"github.com/vyomadl/vyoma-dl/session"
)

func setup(t *testing.T, courses ...*sitetest.Course) (*sitetest.Site, *course.Resolver, string) {
	t.Helper()
	site := sitetest.New(t)
	for _, c := range courses {
		site.AddCourse(c)
	}
	s, err := session.NewFromPair(sitetest.Username, sitetest.Password, session.WithBaseURL(site.URL()))
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := s.Login(context.Background()); !ok {
		t.Fatalf("login: %v", err)
	}
	root := t.TempDir()
	r, err := course.NewResolver(s, site.URL(), root, nil)
	if err != nil {
		t.Fatal(err)
	}
	return site, r, root
}

func TestResolve(t *testing.T) {
	site, r, root := setup(t, &sitetest.Course{
		ID:          "panini-1",
		Title:       "Paninian Grammar",
		Teacher:     "Dr. Rao",
		Description: "Introductory sutras",
		Subscribed:  true,
	})

	c, err := r.Resolve(context.Background(), site.CourseURL("panini-1")+"#curriculum")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c.ID != "panini-1" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.Title != "Paninian Grammar" || c.Teacher != "Dr. Rao" {
		t.Errorf("Title/Teacher = %q/%q", c.Title, c.Teacher)
	}
	if c.Dir != filepath.Join(root, "panini-1") {
		t.Errorf("Dir = %q", c.Dir)
	}
	if !strings.Contains(c.Description, `class="course-description"`) || !strings.Contains(c.Description, "Introductory sutras") {
		t.Errorf("Description = %q", c.Description)
	}
	if c.Subscription() != course.Subscribed {
		t.Errorf("Subscription() = %v; want subscribed", c.Subscription())
	}
	if c.String() != "Paninian Grammar by Dr. Rao" {
		t.Errorf("String() = %q", c.String())
	}
}

func TestResolveFallbackTitle(t *testing.T) {
	_, r, _ := setup(t, &sitetest.Course{ID: "untitled"})
	c, err := r.Resolve(context.Background(), "untitled")
	if err != nil {
		t.Fatal(err)
	}
	if c.Title != "untitled" || c.Teacher != "" {
		t.Errorf("Title/Teacher = %q/%q; want id and empty", c.Title, c.Teacher)
	}
	if c.Subscription() != course.NotSubscribed {
		t.Errorf("Subscription() = %v; want not subscribed", c.Subscription())
	}
}

func TestResolveInvalid(t *testing.T) {
	_, r, _ := setup(t)
	if _, err := r.Resolve(context.Background(), "https://example.com/course/x"); !errors.Is(err, course.ErrInvalidIdentifier) {
		t.Errorf("Resolve() error = %v; want ErrInvalidIdentifier", err)
	}
	if _, err := r.Resolve(context.Background(), "missing-course"); err == nil {
		t.Error("Resolve() of an unknown course succeeded")
	}
}

func TestHeaderCheck(t *testing.T) {
	tests := []struct {
		name    string
		course  *sitetest.Course
		wantLog bool
	}{
		{name: "mismatch is logged", course: &sitetest.Course{ID: "a", HeaderID: "b", Title: "A"}, wantLog: true},
		{name: "matching header", course: &sitetest.Course{ID: "a", Title: "A"}},
		{name: "header without href", course: &sitetest.Course{ID: "a", BareHeader: true, Title: "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, _, root := setup(t, tt.course)
			var buf bytes.Buffer
			l := logger.Wrap(log.NewWithOptions(&buf, log.Options{ReportTimestamp: false}))
			s, err := session.NewFromPair(sitetest.Username, sitetest.Password, session.WithBaseURL(site.URL()))
			if err != nil {
				t.Fatal(err)
			}
			if ok, err := s.Login(context.Background()); !ok {
				t.Fatalf("login: %v", err)
			}
			r, err := course.NewResolver(s, site.URL(), root, l)
			if err != nil {
				t.Fatal(err)
			}
			c, err := r.Resolve(context.Background(), "a")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if c.Title != "A" {
				t.Errorf("Title = %q", c.Title)
			}
			if got := strings.Contains(buf.String(), "Invalid course header"); got != tt.wantLog {
				t.Errorf("header error logged = %v, want %v; log:\n%s", got, tt.wantLog, buf.String())
			}
		})
	}
}

func TestEnsureSubscribed(t *testing.T) {
	tests := []struct {
		name      string
		course    *sitetest.Course
		want      bool
		wantPosts int
	}{
		{
			name:      "already subscribed",
			course:    &sitetest.Course{ID: "c", Subscribed: true},
			want:      true,
			wantPosts: 0,
		},
		{
			name:      "subscribes",
			course:    &sitetest.Course{ID: "c"},
			want:      true,
			wantPosts: 1,
		},
		{
			name:      "locked course",
			course:    &sitetest.Course{ID: "c", Locked: true},
			want:      false,
			wantPosts: 1,
		},
		{
			name:      "no form",
			course:    &sitetest.Course{ID: "c", NoForm: true},
			want:      false,
			wantPosts: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, r, _ := setup(t, tt.course)
			c, err := r.Resolve(context.Background(), "c")
			if err != nil {
				t.Fatal(err)
			}
			ok, err := c.EnsureSubscribed(context.Background())
			if ok != tt.want {
				t.Fatalf("EnsureSubscribed() = %v, %v; want %v", ok, err, tt.want)
			}
			if !ok && !errors.Is(err, course.ErrSubscriptionFailed) {
				t.Errorf("error = %v; want ErrSubscriptionFailed", err)
			}
			if ok && !c.Subscribed() {
				t.Error("course not marked subscribed")
			}
			if site.SubscribePosts() != tt.wantPosts {
				t.Errorf("subscribe posts = %d; want %d", site.SubscribePosts(), tt.wantPosts)
			}
		})
	}
}
