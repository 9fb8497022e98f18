package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/linkchecker-go/linkcheck/auth"
)

func TestLoginPostsFormFieldsAndPopulatesJar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("username") != "alice" || r.Form.Get("password") != "s3cret" {
			t.Fatalf("unexpected form fields: %v", r.Form)
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	jar, err := auth.NewJar()
	if err != nil {
		t.Fatalf("NewJar: %v", err)
	}
	client := &http.Client{Jar: jar}

	err = auth.Login(context.Background(), client, auth.LoginConfig{
		URL:           srv.URL + "/login",
		UserField:     "username",
		UserValue:     "alice",
		PasswordField: "password",
		PasswordValue: "s3cret",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	srvURL, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	cookies := jar.Cookies(srvURL)
	if len(cookies) != 1 || cookies[0].Name != "session" || cookies[0].Value != "abc123" {
		t.Fatalf("expected the session cookie to be stored in the jar, got %v", cookies)
	}
}

func TestLoginSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	jar, err := auth.NewJar()
	if err != nil {
		t.Fatalf("NewJar: %v", err)
	}
	client := &http.Client{Jar: jar}

	err = auth.Login(context.Background(), client, auth.LoginConfig{
		URL:           srv.URL + "/login",
		UserField:     "username",
		UserValue:     "alice",
		PasswordField: "password",
		PasswordValue: "wrong",
	})
	if err == nil {
		t.Fatal("expected an error for a 403 login response")
	}
}
