package course

import "testing"

func TestParsePageForm(t *testing.T) {
	page := []byte(`<html><body>
<header class="course-header"><a href="/course/x"><h5><b> Vedanta </b></h5></a><a class="author">Swami</a></header>
<div class="course-description">About</div>
<form><input name="course_id" value="x"><input name="course_action" value="add_user"><input value="no name"><input name="empty"></form>
</body></html>`)
	info, err := parsePage(page)
	if err != nil {
		t.Fatal(err)
	}
	if info.title != "Vedanta" || info.teacher != "Swami" {
		t.Errorf("title/teacher = %q/%q", info.title, info.teacher)
	}
	if info.headerHref != "/course/x" {
		t.Errorf("headerHref = %q", info.headerHref)
	}
	if info.description != `<div class="course-description">About</div>` {
		t.Errorf("description = %q", info.description)
	}
	want := map[string]string{"course_id": "x", "course_action": "add_user", "empty": ""}
	if len(info.form) != len(want) {
		t.Fatalf("form = %v; want %v", info.form, want)
	}
	for k, v := range want {
		if got := info.form.Get(k); got != v {
			t.Errorf("form[%q] = %q; want %q", k, got, v)
		}
	}
}

func TestParsePageWithoutForm(t *testing.T) {
	info, err := parsePage([]byte(`<html><body><p>nothing here</p></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if info.form != nil || info.hasHeader || info.description != "" {
		t.Errorf("unexpected page info: %+v", info)
	}
}
