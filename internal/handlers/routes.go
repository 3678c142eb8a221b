package handlers

import "github.com/go-chi/chi/v5"

// Routes builds the application router. The search and book detail pages
// sit behind the auth gate; everything else is public.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Index)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/search", h.SearchForm)
		r.Post("/search", h.Search)
		r.Get("/book/{id}", h.BookDetail)
		r.Post("/book/{id}", h.BookDetail)
	})

	return r
}
