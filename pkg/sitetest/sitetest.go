// Package sitetest runs an in-process imitation of the course site for
// tests: login with a nonce, course pages with a subscription form and
// downloadable files behind the session cookie.
package sitetest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/xid"
)

const (
	Username     = "student"
	Password     = "s3cret"
	Nonce        = "f00dcafe42"
	cookieName   = "wordpress_logged_in"
	loginHandler = "/wp-admin/admin-ajax.php"
)

type Link struct {
	Class string
	Href  string
}

type File struct {
	Body               []byte
	ContentDisposition string
	// Status, when non-zero, is returned instead of the body.
	Status int
}

type Course struct {
	ID          string
	Title       string
	Teacher     string
	Description string
	// HeaderID overrides the course id linked from the page header.
	HeaderID string
	// BareHeader renders the header anchor without an href.
	BareHeader bool
	Subscribed bool
	// Locked courses ignore subscription requests.
	Locked bool
	// NoForm hides the subscription form.
	NoForm bool
	Links  []Link
}

type Site struct {
	Server *httptest.Server

	mu             sync.Mutex
	sessions       map[string]bool
	courses        map[string]*Course
	files          map[string]File
	requests       map[string]int
	loginPosts     int
	subscribePosts int
}

func New(t testing.TB) *Site {
	t.Helper()
	s := &Site{
		sessions: make(map[string]bool),
		courses:  make(map[string]*Course),
		files:    make(map[string]File),
		requests: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST "+loginHandler, s.handleLogin)
	mux.HandleFunc("GET /course/{id}", s.handleCourse)
	mux.HandleFunc("POST /course/{id}", s.handleSubscribe)
	mux.HandleFunc("GET /files/", s.handleFile)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

func (s *Site) URL() string { return s.Server.URL }

func (s *Site) CourseURL(id string) string { return s.Server.URL + "/course/" + id }

func (s *Site) FileURL(name string) string { return s.Server.URL + "/files/" + name }

func (s *Site) AddCourse(c *Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[c.ID] = c
}

func (s *Site) AddFile(name string, f File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files["/files/"+name] = f
}

func (s *Site) SetFileStatus(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.files["/files/"+name]
	f.Status = status
	s.files["/files/"+name] = f
}

func (s *Site) Subscribed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	return ok && c.Subscribed
}

func (s *Site) LoginPosts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginPosts
}

func (s *Site) SubscribePosts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribePosts
}

// Requests returns how many times path was requested.
func (s *Site) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func (s *Site) loggedIn(r *http.Request) bool {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[c.Value]
}

func (s *Site) count(r *http.Request) {
	s.mu.Lock()
	s.requests[r.URL.Path]++
	s.mu.Unlock()
}

func (s *Site) handleHome(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	var b strings.Builder
	b.WriteString("<html><body><header>")
	if s.loggedIn(r) {
		b.WriteString(`<a href="/logout">Sign Out</a>`)
	} else {
		b.WriteString(`<a href="#login">Sign In</a>`)
		fmt.Fprintf(&b, `<form class="login"><input type="hidden" name="nonce" value="%s"/></form>`, Nonce)
	}
	b.WriteString("</header></body></html>")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, b.String())
}

func (s *Site) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.loginPosts++
	s.mu.Unlock()
	f := r.PostForm
	if f.Get("action") != "themex_update_user" || f.Get("user_action") != "login_user" || f.Get("nonce") != Nonce {
		fmt.Fprint(w, `<div class="error">invalid request</div>`)
		return
	}
	if f.Get("user_login") != Username || f.Get("user_password") != Password {
		fmt.Fprint(w, `<div class="error">incorrect password</div>`)
		return
	}
	sid := xid.New().String()
	s.mu.Lock()
	s.sessions[sid] = true
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: sid, Path: "/"})
	fmt.Fprint(w, `<a href="/">redirect</a>`)
}

func (s *Site) handleCourse(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	loggedIn := s.loggedIn(r)
	s.mu.Lock()
	c, ok := s.courses[r.PathValue("id")]
	var page string
	if ok {
		page = s.renderCourse(c, loggedIn)
	}
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (s *Site) renderCourse(c *Course, loggedIn bool) string {
	headerID := c.HeaderID
	if headerID == "" {
		headerID = c.ID
	}
	var b strings.Builder
	b.WriteString("<html><body>")
	if c.BareHeader {
		b.WriteString(`<header class="course-header"><a>`)
	} else {
		fmt.Fprintf(&b, `<header class="course-header"><a href="%s">`, s.CourseURL(headerID))
	}
	if c.Title != "" {
		fmt.Fprintf(&b, "<h5><b>%s</b></h5>", html.EscapeString(c.Title))
	}
	b.WriteString("</a>")
	if c.Teacher != "" {
		fmt.Fprintf(&b, `<a class="author" href="/teacher">%s</a>`, html.EscapeString(c.Teacher))
	}
	b.WriteString("</header>")
	fmt.Fprintf(&b, `<div class="course-description"><p>%s</p></div>`, html.EscapeString(c.Description))
	if !c.NoForm && loggedIn {
		action := "add_user"
		label := "Take This Course"
		if c.Subscribed {
			action = "remove_user"
			label = "Quit This Course"
		}
		fmt.Fprintf(&b, `<form class="course-form" method="POST" action="%s">`, s.CourseURL(c.ID))
		fmt.Fprintf(&b, `<input type="hidden" name="course_id" value="%s"/>`, c.ID)
		fmt.Fprintf(&b, `<input type="hidden" name="course_action" value="%s"/>`, action)
		fmt.Fprintf(&b, `<input type="hidden" name="plan_id" value="0"/>`)
		fmt.Fprintf(&b, `<input type="submit" value="%s"/>`, label)
		b.WriteString("</form>")
	}
	if c.Subscribed && loggedIn {
		b.WriteString(`<ul class="lessons">`)
		for _, l := range c.Links {
			fmt.Fprintf(&b, `<li><a class="%s" href="%s">%s</a></li>`, l.Class, l.Href, html.EscapeString(l.Href))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func (s *Site) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	loggedIn := s.loggedIn(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribePosts++
	c, ok := s.courses[r.PathValue("id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if loggedIn && !c.Locked && r.PostForm.Get("course_id") == c.ID {
		switch r.PostForm.Get("course_action") {
		case "add_user":
			c.Subscribed = true
		case "remove_user":
			c.Subscribed = false
		}
	}
	fmt.Fprint(w, s.renderCourse(c, loggedIn))
}

func (s *Site) handleFile(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	if !s.loggedIn(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	s.mu.Lock()
	f, ok := s.files[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.Status != 0 {
		http.Error(w, http.StatusText(f.Status), f.Status)
		return
	}
	if f.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", f.ContentDisposition)
	}
	w.Write(f.Body)
}
