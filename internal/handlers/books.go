package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"book-catalog/internal/models"
	"book-catalog/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SearchViewModel holds data for the search page.
type SearchViewModel struct {
	User    *models.User
	Error   string
	Term    string
	Results []models.Book
	// Searched is true once a query ran, so the template can tell an empty
	// result list from the initial form render.
	Searched bool
}

// BookViewModel holds data for the book detail page. Book is nil when the
// requested id matches nothing.
type BookViewModel struct {
	User *models.User
	Book *models.Book
}

// SearchForm renders the search page.
func (h *Handlers) SearchForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "search.html", SearchViewModel{User: GetUserFromContext(r)})
}

// Search handles the search form submission. Exactly one field is used,
// checked in priority order: title, then author, then isbn.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		h.render(w, "search.html", SearchViewModel{User: user, Error: "Invalid form submission"})
		return
	}

	var (
		field storage.SearchField
		label string
		term  string
	)
	switch {
	case strings.TrimSpace(r.FormValue("title")) != "":
		field, label, term = storage.SearchByTitle, "title", strings.TrimSpace(r.FormValue("title"))
	case strings.TrimSpace(r.FormValue("author")) != "":
		field, label, term = storage.SearchByAuthor, "author", strings.TrimSpace(r.FormValue("author"))
	case strings.TrimSpace(r.FormValue("isbn")) != "":
		field, label, term = storage.SearchByISBN, "ISBN", strings.TrimSpace(r.FormValue("isbn"))
	default:
		h.render(w, "search.html", SearchViewModel{
			User:  user,
			Error: "Please enter a Title, Author, or ISBN.",
		})
		return
	}

	books, err := h.store.SearchBooks(field, term)
	if err != nil {
		h.logger.Error("book search failed", zap.String("field", string(field)), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm := SearchViewModel{User: user, Term: term, Results: books, Searched: true}
	if len(books) == 0 {
		vm.Error = "No books found matching that " + label + "."
	}
	h.render(w, "search.html", vm)
}

// BookDetail renders the detail page for one book. A missing or
// non-numeric id renders the page with no book data rather than a 404.
func (h *Handlers) BookDetail(w http.ResponseWriter, r *http.Request) {
	vm := BookViewModel{User: GetUserFromContext(r)}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.render(w, "book.html", vm)
		return
	}

	book, err := h.store.GetBookByID(id)
	if err != nil {
		h.logger.Error("book lookup failed", zap.Int64("id", id), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm.Book = book
	h.render(w, "book.html", vm)
}
