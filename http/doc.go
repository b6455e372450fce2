// Package http serves the store frontend and the catalog admin pages.
//
// Pages are rendered server-side from embedded html/template files. Routes,
// form field names and user-facing messages are in Portuguese.
//
// # Routes
//
//	GET       /, /home                 catalog view
//	GET,POST  /login                   sign in
//	GET       /logout                  sign out
//	GET       /produtos?page=N         paginated listing with inline editing
//	GET,POST  /cadastro-produtos       create a product
//	GET,POST  /editar-produto/{id}     edit a product
//	POST      /excluir-produto/{id}    delete a product
//	POST      /editar-produto-inline   bulk edit from the listing
//	GET,POST  /settings                create an admin account
//	GET       /imagens/*               product images (prefix configurable)
//	GET       /static/*                embedded assets
//	GET       /healthz                 backend ping
//
// # Sessions
//
// A signed gorilla/sessions cookie carries the account id only.
// SessionMiddleware resolves it through Identity.Lookup and stores a *Session
// in the request context; CurrentSession reads it back. With ProtectWrites
// set, every mutating route and /settings redirect anonymous requests to
// /login.
//
// # Uploads
//
// UploadMiddleware buffers multipart files in memory up to MaxUploadSize each
// and detects their content type from the bytes. Handlers read them with
// Uploads. The inline bulk edit carries several files, so its body is capped
// by MaxRequestSize instead of a single file's limit.
//
// # Usage
//
//	h, err := http.NewHandler(&http.HandlerConfig{
//	    Session:       http.SessionConfig{Name: "loja_session", Secret: secret},
//	    ProtectWrites: true,
//	}, catalog, identity, store, db)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := &nethttp.Server{Addr: ":3000", Handler: h.Router()}
//
// # Errors
//
// ErrorStatus maps domain errors to a status code and a message. Not found
// renders the 404 page, invalid input re-renders the form with 400, invalid
// credentials give 401, a duplicate account 409 and anything else 500 with a
// generic message. Internal error text is only logged.
package http
