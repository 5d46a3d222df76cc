package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/roach88/precario/internal/catalog"
)

const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON request body onto dst, rejecting unknown fields
// and trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("decode request body: unexpected trailing data")
	}
	return nil
}

// checkBodyID accepts a body that echoes the record id, as a GET response
// does, but refuses one naming a different record.
func checkBodyID(pathID, bodyID string) error {
	if bodyID != "" && bodyID != pathID {
		return fmt.Errorf("body id %q does not match %q", bodyID, pathID)
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
}

func (s *Server) observeProducts(products []catalog.Product) {
	s.metrics.SetProductCounts(catalog.CountPrintable(products), len(products))
}

func (s *Server) apiListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := s.svc.Products(r.Context(), catalog.ParseSort(q.Get("sort"), q.Get("dir")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.observeProducts(products)
	writeData(w, http.StatusOK, products)
}

func (s *Server) apiPrintableProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.svc.Printable(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, products)
}

func (s *Server) apiGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

// apiCreateProduct accepts a ProductInput; absent fields take the "new
// product" defaults.
func (s *Server) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	in := catalog.DefaultProductInput()
	if err := decodeBody(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}
	p, err := s.svc.CreateProduct(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

// apiUpdateProduct applies the body over the stored product, so fields left
// out keep their current values. The body may carry the product's own id.
func (s *Server) apiUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := s.svc.Product(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	body := struct {
		ID string `json:"id"`
		catalog.ProductInput
	}{ProductInput: current.Input()}
	if err := decodeBody(w, r, &body); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := checkBodyID(id, body.ID); err != nil {
		writeBadRequest(w, err)
		return
	}
	p, err := s.svc.UpdateProduct(r.Context(), id, body.ProductInput)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) apiSetPrint(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Print *bool `json:"print"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeBadRequest(w, err)
		return
	}
	if body.Print == nil {
		writeBadRequest(w, errors.New(`"print" is required`))
		return
	}

	id := r.PathValue("id")
	if err := s.svc.SetPrint(r.Context(), id, *body.Print); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p, err := s.svc.Product(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) apiDuplicateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.DuplicateProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (s *Server) apiDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteProduct(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) apiListQueues(w http.ResponseWriter, r *http.Request) {
	queues, err := s.svc.Queues(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, queues)
}

func (s *Server) apiGetQueue(w http.ResponseWriter, r *http.Request) {
	q, err := s.svc.Queue(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, q)
}

func (s *Server) apiCreateQueue(w http.ResponseWriter, r *http.Request) {
	in := catalog.DefaultQueueInput()
	if err := decodeBody(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}
	q, err := s.svc.CreateQueue(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, q)
}

func (s *Server) apiUpdateQueue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := s.svc.Queue(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	body := struct {
		ID string `json:"id"`
		catalog.QueueInput
	}{QueueInput: current.Input()}
	if err := decodeBody(w, r, &body); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := checkBodyID(id, body.ID); err != nil {
		writeBadRequest(w, err)
		return
	}
	q, err := s.svc.UpdateQueue(r.Context(), id, body.QueueInput)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, q)
}

func (s *Server) apiDeleteQueue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteQueue(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id})
}
