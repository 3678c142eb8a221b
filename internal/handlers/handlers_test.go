package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"book-catalog/internal/models"
	"book-catalog/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const templateDir = "../../web/templates"

// HandlersTestSuite exercises the full request flow against an in-memory
// database and the real templates.
type HandlersTestSuite struct {
	suite.Suite
	db     *storage.DB
	router http.Handler
}

// SetupTest runs before each test
func (suite *HandlersTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db

	h := NewHandlers(db, zap.NewNop(), templateDir, false)
	suite.router = h.Routes()
}

// TearDownTest runs after each test
func (suite *HandlersTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *HandlersTestSuite) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, http.NoBody)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// register creates an account through the HTTP flow.
func (suite *HandlersTestSuite) register(username, password string) {
	w := suite.postForm("/register", url.Values{
		"username":              {username},
		"password":              {password},
		"password_confirmation": {password},
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	require.Contains(suite.T(), w.Body.String(), "Account created")
}

// login logs in through the HTTP flow and returns the session cookie.
func (suite *HandlersTestSuite) login(username, password string) *http.Cookie {
	w := suite.postForm("/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(suite.T(), http.StatusFound, w.Code)
	require.Equal(suite.T(), "/search", w.Header().Get("Location"))

	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			return c
		}
	}
	suite.T().Fatal("no session cookie set on login")
	return nil
}

func (suite *HandlersTestSuite) seedBooks() {
	books := []models.Book{
		{ISBN: "0618260307", Title: "The Hobbit", Author: "J.R.R. Tolkien", YearPublished: 1937},
		{ISBN: "0261103565", Title: "The Hobbit: Illustrated Edition", Author: "J.R.R. Tolkien", YearPublished: 1997},
		{ISBN: "0451524934", Title: "1984", Author: "George Orwell", YearPublished: 1949},
	}
	for _, b := range books {
		require.NoError(suite.T(), suite.db.InsertBook(b))
	}
}

func (suite *HandlersTestSuite) TestRegisterValidationOrder() {
	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing username", url.Values{"password": {"pw"}, "password_confirmation": {"pw"}}, "Please enter a username."},
		{"missing password", url.Values{"username": {"alice"}, "password_confirmation": {"pw"}}, "Please enter a password."},
		{"missing confirmation", url.Values{"username": {"alice"}, "password": {"pw"}}, "Please confirm your password."},
		{"mismatch", url.Values{"username": {"alice"}, "password": {"pw"}, "password_confirmation": {"other"}}, "Passwords do not match."},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			w := suite.postForm("/register", tc.form)
			assert.Equal(suite.T(), http.StatusOK, w.Code)
			assert.Contains(suite.T(), w.Body.String(), tc.want)

			count, err := suite.db.UserCount()
			require.NoError(suite.T(), err)
			assert.Zero(suite.T(), count, "no user row may be created on a validation failure")
		})
	}
}

func (suite *HandlersTestSuite) TestRegisterDuplicateUsername() {
	suite.register("alice", "secret123")

	w := suite.postForm("/register", url.Values{
		"username":              {"alice"},
		"password":              {"different"},
		"password_confirmation": {"different"},
	})
	assert.Contains(suite.T(), w.Body.String(), "Username already exists.")

	count, err := suite.db.UserCount()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *HandlersTestSuite) TestRegisterDoesNotAutoLogin() {
	suite.register("alice", "secret123")

	// No cookie was handed out, so the search page must still redirect.
	w := suite.get("/search")
	assert.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/login", w.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestLoginWrongPassword() {
	suite.register("alice", "secret123")

	w := suite.postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Invalid username or password.")

	// And the generic message for an unknown user is identical.
	w2 := suite.postForm("/login", url.Values{
		"username": {"nobody"},
		"password": {"wrong"},
	})
	assert.Contains(suite.T(), w2.Body.String(), "Invalid username or password.")
}

func (suite *HandlersTestSuite) TestLoginMissingFields() {
	w := suite.postForm("/login", url.Values{"password": {"pw"}})
	assert.Contains(suite.T(), w.Body.String(), "Please enter a username.")

	w = suite.postForm("/login", url.Values{"username": {"alice"}})
	assert.Contains(suite.T(), w.Body.String(), "Please enter a password.")
}

func (suite *HandlersTestSuite) TestLoginLogoutFlow() {
	suite.register("alice", "secret123")
	cookie := suite.login("alice", "secret123")

	// Authenticated search access works
	w := suite.get("/search", cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Search the catalog")

	// Logout clears the session
	w = suite.get("/logout", cookie)
	assert.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/", w.Header().Get("Location"))

	// The old cookie no longer grants access
	w = suite.get("/search", cookie)
	assert.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/login", w.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestLoginClearsExistingSession() {
	suite.register("alice", "secret123")
	cookie := suite.login("alice", "secret123")

	// A failed login attempt with the old cookie attached must kill the
	// old session.
	w := suite.postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	}, cookie)
	assert.Contains(suite.T(), w.Body.String(), "Invalid username or password.")

	w = suite.get("/search", cookie)
	assert.Equal(suite.T(), http.StatusFound, w.Code, "stale session must not survive a login attempt")
}

func (suite *HandlersTestSuite) TestLogoutWithoutSession() {
	w := suite.get("/logout")
	assert.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/", w.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestSearchRequiresAuth() {
	w := suite.get("/search")
	assert.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/login", w.Header().Get("Location"))

	w = suite.postForm("/search", url.Values{"title": {"Hobbit"}})
	assert.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/login", w.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestSearchByTitle() {
	suite.seedBooks()
	suite.register("alice", "secret123")
	cookie := suite.login("alice", "secret123")

	w := suite.postForm("/search", url.Values{"title": {"Hobbit"}}, cookie)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(suite.T(), body, "The Hobbit")
	assert.Contains(suite.T(), body, "Illustrated Edition")
	assert.NotContains(suite.T(), body, "1984")
	assert.Equal(suite.T(), 2, strings.Count(body, `href="/book/`), "exactly the two matching rows, no duplicates")
}

func (suite *HandlersTestSuite) TestSearchFieldPriority() {
	suite.seedBooks()
	suite.register("alice", "secret123")
	cookie := suite.login("alice", "secret123")

	// Title wins even when author is also present and would match 1984.
	w := suite.postForm("/search", url.Values{
		"title":  {"Hobbit"},
		"author": {"Orwell"},
	}, cookie)
	body := w.Body.String()
	assert.Contains(suite.T(), body, "The Hobbit")
	assert.NotContains(suite.T(), body, "1984")
}

func (suite *HandlersTestSuite) TestSearchAllFieldsBlank() {
	suite.register("alice", "secret123")
	cookie := suite.login("alice", "secret123")

	w := suite.postForm("/search", url.Values{}, cookie)
	assert.Contains(suite.T(), w.Body.String(), "Please enter a Title, Author, or ISBN.")
}

func (suite *HandlersTestSuite) TestSearchNoResults() {
	suite.seedBooks()
	suite.register("alice", "secret123")
	cookie := suite.login("alice", "secret123")

	w := suite.postForm("/search", url.Values{"author": {"Tolstoy"}}, cookie)
	assert.Contains(suite.T(), w.Body.String(), "No books found matching that author.")

	w = suite.postForm("/search", url.Values{"isbn": {"000000"}}, cookie)
	assert.Contains(suite.T(), w.Body.String(), "No books found matching that ISBN.")
}

func (suite *HandlersTestSuite) TestBookDetail() {
	suite.seedBooks()
	suite.register("alice", "secret123")
	cookie := suite.login("alice", "secret123")

	books, err := suite.db.SearchBooks(storage.SearchByTitle, "1984")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), books, 1)

	w := suite.get("/book/"+strconv.FormatInt(books[0].ID, 10), cookie)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(suite.T(), body, "1984")
	assert.Contains(suite.T(), body, "George Orwell")
	assert.Contains(suite.T(), body, "1949")
}

func (suite *HandlersTestSuite) TestBookDetailMissing() {
	suite.register("alice", "secret123")
	cookie := suite.login("alice", "secret123")

	w := suite.get("/book/99999", cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code, "missing book renders, not 404")
	assert.Contains(suite.T(), w.Body.String(), "No book to show.")

	w = suite.get("/book/notanumber", cookie)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "No book to show.")
}

func (suite *HandlersTestSuite) TestBookDetailRequiresAuth() {
	w := suite.get("/book/1")
	assert.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/login", w.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestIndexPublic() {
	w := suite.get("/")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Book Catalog")
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
