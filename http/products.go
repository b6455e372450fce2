package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amww/loja"
)

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	data := viewData{Title: "Loja"}

	products, err := h.catalog.All(r.Context())
	if err != nil {
		slog.Error("list products", "err", err)
		data.Error = "Não foi possível carregar os produtos."
		products = nil
	}
	data.Products = products

	render(w, r, http.StatusOK, "index", data)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	data := viewData{
		Title:   "Produtos",
		Flashes: h.takeFlashes(w, r),
	}

	page, err := h.catalog.Page(r.Context(), loja.ParsePage(r.URL.Query().Get("page")))
	if err != nil {
		slog.Error("list products", "err", err)
		data.Error = "Não foi possível carregar os produtos."
		page = loja.Page{Items: []loja.Product{}, Number: 1, TotalPages: 1}
	}
	data.Page = page

	render(w, r, http.StatusOK, "produtos", data)
}

func (h *Handler) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "cadastro-produtos", viewData{Title: "Cadastrar produto"})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in := productInput(r)

	p, err := h.catalog.Create(r.Context(), in, Uploads(r.Context())[loja.FieldImage])
	if err != nil {
		if errors.Is(err, loja.ErrImageUpload) && p.ID != uuid.Nil {
			logError(r, http.StatusBadGateway, err)
			h.addFlash(w, r, fmt.Sprintf("Produto %q cadastrado, mas a imagem não pôde ser enviada.", p.Name))
			http.Redirect(w, r, "/produtos", http.StatusFound)
			return
		}

		status, msg := ErrorStatus(err)
		logError(r, status, err)
		render(w, r, status, "cadastro-produtos", viewData{
			Title: "Cadastrar produto",
			Error: msg,
			Form:  in,
		})
		return
	}

	h.addFlash(w, r, fmt.Sprintf("Produto %q cadastrado.", p.Name))
	http.Redirect(w, r, "/produtos", http.StatusFound)
}

func (h *Handler) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeStatusPage(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, "editar-produto", viewData{
		Title:   "Editar produto",
		Product: p,
		Form:    formFromProduct(p),
	})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeStatusPage(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	in := productInput(r)

	p, err := h.catalog.Update(r.Context(), id, in, Uploads(r.Context())[loja.FieldImage])
	if err != nil {
		switch {
		case errors.Is(err, loja.ErrNotFound):
			HandleError(w, r, err)
		case errors.Is(err, loja.ErrImageUpload) && p.ID != uuid.Nil:
			logError(r, http.StatusBadGateway, err)
			h.addFlash(w, r, fmt.Sprintf("Produto %q atualizado, mas a imagem não pôde ser enviada.", p.Name))
			http.Redirect(w, r, "/produtos", http.StatusFound)
		default:
			status, msg := ErrorStatus(err)
			logError(r, status, err)
			render(w, r, status, "editar-produto", viewData{
				Title:   "Editar produto",
				Error:   msg,
				Product: loja.Product{ID: id},
				Form:    in,
			})
		}
		return
	}

	h.addFlash(w, r, fmt.Sprintf("Produto %q atualizado.", p.Name))
	http.Redirect(w, r, "/produtos", http.StatusFound)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeStatusPage(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		HandleError(w, r, err)
		return
	}

	h.addFlash(w, r, "Produto excluído.")
	http.Redirect(w, r, "/produtos", http.StatusFound)
}

func (h *Handler) handleBulkEdit(w http.ResponseWriter, r *http.Request) {
	items := loja.ParseBulkForm(r.PostForm, Uploads(r.Context()))
	if len(items) == 0 {
		h.addFlash(w, r, "Nenhuma alteração enviada.")
		http.Redirect(w, r, "/produtos", http.StatusFound)
		return
	}

	res := h.catalog.BulkUpdate(r.Context(), items)

	s := h.cookieSession(r)
	if len(res.Updated) > 0 {
		s.AddFlash(fmt.Sprintf("%d produto(s) atualizado(s).", len(res.Updated)))
	}

	failed := make([]uuid.UUID, 0, len(res.Failed))
	for id := range res.Failed {
		failed = append(failed, id)
	}
	slices.SortFunc(failed, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

	for _, id := range failed {
		err := res.Failed[id]
		status, msg := ErrorStatus(err)
		logError(r, status, err)
		s.AddFlash(fmt.Sprintf("Falha ao atualizar %s: %s", id, msg))
	}

	if err := s.Save(r, w); err != nil {
		slog.Warn("save flash", "err", err)
	}
	http.Redirect(w, r, "/produtos", http.StatusFound)
}

func productID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func productInput(r *http.Request) loja.ProductInput {
	return loja.ProductInput{
		Name:        r.PostFormValue(loja.FieldName),
		Description: r.PostFormValue(loja.FieldDescription),
		Price:       r.PostFormValue(loja.FieldPrice),
	}
}

func formFromProduct(p loja.Product) loja.ProductInput {
	return loja.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       fmt.Sprintf("%.2f", p.Price),
	}
}
